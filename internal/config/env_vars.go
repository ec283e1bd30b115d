package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	portKey           = "port"
	appNameKey        = "app_name"
	envKey            = "env"
	logLevelKey       = "log_level"
	apiBaseURLKey     = "api_base_url"
	betterAuthURLKey  = "better_auth_url"
	authProviderKey   = "auth_provider"
	sessionStoreKey   = "session_store"
	redisAddrKey      = "redis_addr"
	httpTimeoutKey    = "http_timeout"
	tokenIssuerURLKey = "token_issuer_url"
	tokenVerifyKey    = "token_verify"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := strings.TrimSpace(e.v.GetString(portKey))
	if port != "" && !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameKey)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(envKey)
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelKey)
}

// GetAPIBaseURL returns the REST backend base URL (e.g. "https://api.moto.example")
// that serves /auth/login and /auth/refresh.
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.v.GetString(apiBaseURLKey), "/")
}

// GetBetterAuthURL returns the base URL of the BetterAuth service.
func (e EnvVars) GetBetterAuthURL() string {
	return strings.TrimRight(e.v.GetString(betterAuthURLKey), "/")
}

func (e EnvVars) GetAuthProvider() string {
	return strings.ToLower(strings.TrimSpace(e.v.GetString(authProviderKey)))
}

func (e EnvVars) GetSessionStore() string {
	return strings.ToLower(strings.TrimSpace(e.v.GetString(sessionStoreKey)))
}

func (e EnvVars) GetRedisAddr() string {
	return e.v.GetString(redisAddrKey)
}

// GetHTTPTimeout bounds every outbound call, including the shared refresh flight.
func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.v.GetDuration(httpTimeoutKey)
}

func (e EnvVars) GetTokenIssuerURL() string {
	return e.v.GetString(tokenIssuerURLKey)
}

func (e EnvVars) GetTokenVerify() bool {
	return e.v.GetBool(tokenVerifyKey)
}
