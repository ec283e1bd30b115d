package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes, shared by the callback chain and the refresh coordinator.
const (
	OutcomeSuccess = "success"
	OutcomeExpired = "expired"
	OutcomeFailed  = "failed"
	OutcomeNoToken = "no_token"
)

var (
	RefreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_refresh_total",
		Help: "Token refresh attempts by caller and outcome.",
	}, []string{"caller", "outcome"})

	RefreshShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_refresh_shared_total",
		Help: "Refresh calls answered by an already in-flight refresh.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_login_total",
		Help: "Credential authorizations by outcome.",
	}, []string{"outcome"})

	BetterAuthRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betterauth_requests_total",
		Help: "Calls made to the BetterAuth service by endpoint and status class.",
	}, []string{"endpoint", "status"})
)
