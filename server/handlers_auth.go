package server

import (
	"net/http"

	"github.com/jrsteele09/moto-session/betterauth"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/rs/zerolog/log"
)

// writeProviderError maps provider and facade errors onto HTTP answers.
func writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrSessionNotFound):
		writeJSONError(w, "unauthenticated", "No active session", http.StatusUnauthorized)
	case apperrors.Is(err, apperrors.ErrUnsupported):
		writeJSONError(w, "unsupported", "Not supported by the active auth provider", http.StatusNotImplemented)
	case apperrors.Is(err, apperrors.ErrOrganizationNotFound):
		writeJSONError(w, "not_found", "Organization not found", http.StatusNotFound)
	default:
		log.Err(err).Msg("upstream auth call failed")
		writeJSONError(w, "upstream_error", "Authentication service unavailable", http.StatusBadGateway)
	}
}

// LoginHandler signs in with email and password. Only the JWT provider has
// a credentials login; BetterAuth logins go to BetterAuth directly.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jwt == nil || s.provider.Name() != ProviderJWT {
			writeJSONError(w, "unsupported", "Credentials login is not enabled", http.StatusNotImplemented)
			return
		}

		req, err := decodeLogin(w, r)
		if err != nil {
			writeJSONError(w, "invalid_request", "Malformed login request", http.StatusBadRequest)
			return
		}

		sessionID, view, err := s.jwt.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			// Never tell the caller whether the password or the backend failed.
			writeJSONError(w, "authentication_failed", "Invalid email or password", http.StatusUnauthorized)
			return
		}

		s.SetLoginSessionCookie(w, sessionID, r, s.config.GetSessionMaxAge())
		writeJSON(w, http.StatusOK, view)
	}
}

// SessionHandler returns the Session View of the active provider.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := s.sessionHandle(r)
		view, err := s.provider.GetSession(r.Context(), handle)
		if err != nil {
			writeProviderError(w, err)
			return
		}
		s.rollSessionCookie(w, handle, r)
		writeJSON(w, http.StatusOK, view)
	}
}

// RefreshHandler forces a token refresh for the caller's session.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := s.sessionHandle(r)
		if handle == "" {
			writeJSONError(w, "unauthenticated", "No active session", http.StatusUnauthorized)
			return
		}

		tok, err := s.provider.Refresh(r.Context(), handle)
		switch {
		case apperrors.Is(err, apperrors.ErrUnsupported):
			writeProviderError(w, err)
		case err != nil || tok == nil:
			writeJSONError(w, "refresh_failed", "Session could not be refreshed", http.StatusUnauthorized)
		default:
			s.rollSessionCookie(w, handle, r)
			writeJSON(w, http.StatusOK, tok)
		}
	}
}

// rollSessionCookie re-issues the gateway's own session cookie so its
// lifetime counts from the latest use. BetterAuth manages its cookie itself.
func (s *Server) rollSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request) {
	if s.jwt == nil || s.provider.Name() != ProviderJWT || sessionID == "" {
		return
	}
	s.SetLoginSessionCookie(w, sessionID, r, s.config.GetSessionMaxAge())
}

// LogoutHandler forgets the session and clears the cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jwt != nil && s.provider.Name() == ProviderJWT {
			if err := s.jwt.SignOut(r.Context(), s.sessionHandle(r)); err != nil {
				log.Err(err).Msg("failed to delete session")
			}
		}
		s.ClearCookie(w, s.provider.CookieName(), r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SignupHandler creates a user with their organization through BetterAuth
// and passes BetterAuth's session cookie on to the browser.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.betterAuth == nil {
			writeJSONError(w, "unsupported", "Organization signup is not enabled", http.StatusNotImplemented)
			return
		}

		var req betterauth.SignupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Malformed signup request", http.StatusBadRequest)
			return
		}

		result, err := s.betterAuth.SignupWithOrganization(r.Context(), req)
		if err != nil {
			var signupErr *betterauth.SignupError
			if apperrors.As(err, &signupErr) {
				writeJSON(w, signupErr.Status, signupErr)
				return
			}
			writeProviderError(w, err)
			return
		}

		for _, c := range result.Cookies {
			http.SetCookie(w, c)
		}
		writeJSON(w, http.StatusCreated, result)
	}
}
