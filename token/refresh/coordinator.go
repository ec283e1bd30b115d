package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/moto-session/backend"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Callers, as recorded on the refresh metrics.
const (
	CallerRefreshNow = "refresh_now"
	CallerCallback   = "callback"
)

// Refresher performs the backend token exchange.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*backend.TokenResponse, error)
}

// Reauthenticator is the session side of a refresh. StoredTokens reads the
// persisted pair without running the callback chain. It returns
// ErrRefreshTokenExpired or ErrNoRefreshToken when the session cannot be
// refreshed. SignInWithTokens installs a fresh pair and MarkRefreshFailed
// records a failed exchange on the session.
type Reauthenticator interface {
	StoredTokens(ctx context.Context, sessionID string) (*oauth2.Token, error)
	SignInWithTokens(ctx context.Context, sessionID string, token *oauth2.Token) error
	MarkRefreshFailed(ctx context.Context, sessionID string, cause error) error
}

// Coordinator serializes refreshes per session. A flight reads the stored
// pair, exchanges it and persists the outcome; the slot clears only once the
// store holds the result, so a later reader sees the rotated pair. Refresh
// tokens rotate on use, so a second exchange of the same token would be
// rejected.
type Coordinator struct {
	refresher      Refresher
	flights        singleflight.Group
	accessLifetime time.Duration
}

type Option func(*Coordinator)

// WithAccessLifetime sets the expiry stamped on returned tokens.
func WithAccessLifetime(d time.Duration) Option {
	return func(c *Coordinator) {
		c.accessLifetime = d
	}
}

func NewCoordinator(refresher Refresher, options ...Option) *Coordinator {
	c := &Coordinator{
		refresher:      refresher,
		accessLifetime: 15 * time.Minute,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Refresh rotates the session's pair for the callback chain. seen is the
// refresh token the caller loaded; when the store already holds a different
// one an earlier flight rotated it and the stored pair is returned without
// another exchange.
func (c *Coordinator) Refresh(ctx context.Context, reauth Reauthenticator, sessionID, seen string) (*oauth2.Token, error) {
	return c.join(ctx, CallerCallback, reauth, sessionID, seen)
}

// RefreshNow forces a refresh of the session's stored pair and installs it.
// It returns nil when the session cannot be refreshed or the exchange
// fails; failures are logged, never returned.
func (c *Coordinator) RefreshNow(ctx context.Context, reauth Reauthenticator, sessionID string) *oauth2.Token {
	tok, err := c.join(ctx, CallerRefreshNow, reauth, sessionID, "")
	if err != nil {
		return nil
	}
	return tok
}

// join runs or joins the flight for sessionID. The flight is detached from
// the caller's cancellation and bounded by the backend client timeout; a
// caller whose context ends stops waiting while the flight carries on.
func (c *Coordinator) join(ctx context.Context, caller string, reauth Reauthenticator, sessionID, seen string) (*oauth2.Token, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(sessionID, func() (any, error) {
		return c.flight(detached, caller, reauth, sessionID, seen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RefreshShared.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		// Each caller gets its own copy.
		t := *res.Val.(*oauth2.Token)
		return &t, nil
	}
}

func (c *Coordinator) flight(ctx context.Context, caller string, reauth Reauthenticator, sessionID, seen string) (*oauth2.Token, error) {
	current, err := reauth.StoredTokens(ctx, sessionID)
	if err != nil {
		outcome := metrics.OutcomeFailed
		switch {
		case apperrors.Is(err, apperrors.ErrNoRefreshToken):
			log.Warn().Str("session", sessionID).Msg("refresh requested without a refresh token")
			outcome = metrics.OutcomeNoToken
		case apperrors.Is(err, apperrors.ErrRefreshTokenExpired):
			outcome = metrics.OutcomeExpired
		default:
			log.Warn().Err(err).Str("session", sessionID).Msg("refresh requested for unreadable session")
		}
		metrics.RefreshAttempts.WithLabelValues(caller, outcome).Inc()
		return nil, err
	}

	if seen != "" && current.RefreshToken != seen {
		metrics.RefreshShared.Inc()
		return current, nil
	}

	tokens, err := c.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		event := log.Warn().Str("session", sessionID).Str("caller", caller)
		if status := backend.StatusCode(err); status != 0 {
			event = event.Int("status", status)
		} else {
			event = event.Err(err)
		}
		event.Msg("token refresh failed")

		outcome := metrics.OutcomeFailed
		if backend.IsRejected(err) {
			outcome = metrics.OutcomeExpired
		}
		metrics.RefreshAttempts.WithLabelValues(caller, outcome).Inc()

		if markErr := reauth.MarkRefreshFailed(ctx, sessionID, err); markErr != nil {
			log.Err(markErr).Str("session", sessionID).Msg("failed to record refresh failure")
		}
		return nil, err
	}

	tok := tokens.OAuth2Token(NowTimeFunc().Add(c.accessLifetime))
	if tok.RefreshToken == "" {
		tok.RefreshToken = current.RefreshToken
	}
	if err := reauth.SignInWithTokens(ctx, sessionID, tok); err != nil {
		log.Err(err).Str("session", sessionID).Msg("failed to install refreshed tokens")
		metrics.RefreshAttempts.WithLabelValues(caller, metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("[Coordinator] install refreshed tokens: %w", err)
	}

	metrics.RefreshAttempts.WithLabelValues(caller, metrics.OutcomeSuccess).Inc()
	return tok, nil
}
