package config

import "github.com/spf13/viper"

const (
	sessionSecretKey = "session_secret"
	cookieSecureKey  = "cookie_secure"
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetCookieSecure() bool
	GetSessionCookieName() string
	GetBetterAuthCookieName() string
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetSessionSecret is the key material used to seal session records at rest.
func (s Security) GetSessionSecret() string {
	return s.v.GetString(sessionSecretKey)
}

func (s Security) GetCookieSecure() bool {
	return s.v.GetBool(cookieSecureKey)
}

func (Security) GetSessionCookieName() string {
	return "moto.session_id"
}

// GetBetterAuthCookieName returns the BetterAuth session cookie name. Secure
// deployments get the __Secure- prefix BetterAuth uses on HTTPS.
func (s Security) GetBetterAuthCookieName() string {
	if s.GetCookieSecure() {
		return "__Secure-better-auth.session_token"
	}
	return "better-auth.session_token"
}
