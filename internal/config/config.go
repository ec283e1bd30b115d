package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderJWT        = "jwt"
	ProviderBetterAuth = "betterauth"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	SecurityConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIBaseURL() string
	GetBetterAuthURL() string
	GetAuthProvider() string
	GetSessionStore() string
	GetRedisAddr() string
	GetHTTPTimeout() time.Duration
	GetTokenIssuerURL() string
	GetTokenVerify() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Security
}

// New builds a Config from the process environment only.
func New() Config {
	return FromViper(newViper())
}

// Load builds a Config from an optional YAML file, with environment
// variables taking precedence over file values.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load read %s: %w", path, err)
		}
	}
	return FromViper(v), nil
}

// FromViper wraps an existing viper instance. Defaults are not applied, so
// callers building their own instance should start from NewViper.
func FromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{v: v},
		Security: Security{v: v},
	}
}

// NewViper returns a viper instance with the gateway defaults and env
// binding applied.
func NewViper() *viper.Viper {
	return newViper()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(portKey, "8080")
	v.SetDefault(appNameKey, "Moto Session Gateway")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(apiBaseURLKey, "http://localhost:8000")
	v.SetDefault(betterAuthURLKey, "http://localhost:3000")
	v.SetDefault(authProviderKey, ProviderJWT)
	v.SetDefault(sessionStoreKey, StoreMemory)
	v.SetDefault(redisAddrKey, "localhost:6379")
	v.SetDefault(httpTimeoutKey, "10s")
	v.SetDefault(tokenVerifyKey, false)
	v.SetDefault(allowedOriginsKey, "http://localhost:3000")
	v.SetDefault(cookieSecureKey, false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate reports configuration combinations the gateway cannot start with.
func (c mainConfig) Validate() error {
	var errs []error

	switch c.GetAuthProvider() {
	case ProviderJWT, ProviderBetterAuth:
	default:
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", ProviderJWT, ProviderBetterAuth, c.GetAuthProvider()))
	}

	switch c.GetSessionStore() {
	case StoreMemory:
	case StoreRedis:
		if c.GetRedisAddr() == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis session store"))
		}
		if c.GetSessionSecret() == "" {
			errs = append(errs, errors.New("SESSION_SECRET is required for the redis session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.GetSessionStore()))
	}

	if c.GetTokenVerify() && c.GetTokenIssuerURL() == "" {
		errs = append(errs, errors.New("TOKEN_ISSUER_URL is required when TOKEN_VERIFY is enabled"))
	}

	if c.GetHTTPTimeout() <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
