package betterauth

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/organizations"
	"github.com/rs/zerolog/log"
)

// SessionInfo is the body of get-session. BetterAuth sessions carry the
// active organization but no roles.
type SessionInfo struct {
	Session struct {
		ID                   string    `json:"id"`
		UserID               string    `json:"userId"`
		ActiveOrganizationID string    `json:"activeOrganizationId,omitempty"`
		ExpiresAt            time.Time `json:"expiresAt"`
	} `json:"session"`
	User struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		Image         string `json:"image,omitempty"`
	} `json:"user"`
}

type memberRole struct {
	Role string `json:"role"`
}

// Session is a client bound to one browser's session cookie.
type Session struct {
	client *Client
	token  string
}

// GetSession returns the current session, or nil when signed out.
func (s *Session) GetSession(ctx context.Context) (*SessionInfo, error) {
	if s.token == "" {
		return nil, nil
	}
	resp, err := s.client.do(ctx, http.MethodGet, RouteGetSession, nil, s.token, nil)
	if err != nil {
		if statusCode(err) == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, err
	}
	var info SessionInfo
	ok, err := decode(RouteGetSession, resp.body, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

// GetActiveRole resolves the caller's role in the active organization. The
// role is fetched from BetterAuth on every call and never cached. It
// returns nil when the caller is not in an organization or holds a role
// outside the known set.
//
// "Not in an organization" is whatever BetterAuth answers with 400 or 404
// on get-active-member-role; the session's active organization is not
// checked here first, since that would cost a second round trip per call.
// A 401 is read the same way, as a signed-out caller has no role.
func (s *Session) GetActiveRole(ctx context.Context) (*organizations.Role, error) {
	resp, err := s.client.do(ctx, http.MethodGet, RouteActiveMemberRole, nil, s.token, nil)
	if err != nil {
		switch statusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return nil, nil
		}
		return nil, err
	}

	var m memberRole
	ok, err := decode(RouteActiveMemberRole, resp.body, &m)
	if err != nil || !ok || m.Role == "" {
		return nil, err
	}
	role, known := organizations.ParseRole(m.Role)
	if !known {
		log.Warn().Str("role", m.Role).Msg("unknown organization role")
		return nil, nil
	}
	return &role, nil
}

// IsAdmin reports whether the active role is one of the admin roles.
func (s *Session) IsAdmin(ctx context.Context) (bool, error) {
	role, err := s.GetActiveRole(ctx)
	if err != nil || role == nil {
		return false, err
	}
	return role.IsAdmin(), nil
}

func (s *Session) IsSupervisor(ctx context.Context) (bool, error) {
	role, err := s.GetActiveRole(ctx)
	if err != nil || role == nil {
		return false, err
	}
	return role.IsSupervisor(), nil
}

// GetOrganizationInfo returns the organization. It fails with
// ErrOrganizationNotFound when the organization does not exist or the
// caller cannot see it.
func (s *Session) GetOrganizationInfo(ctx context.Context, organizationID string) (*organizations.Organization, error) {
	if organizationID == "" {
		return nil, apperrors.ErrOrganizationNotFound
	}
	resp, err := s.client.do(ctx, http.MethodGet, RouteFullOrganization, map[string]string{"organizationId": organizationID}, s.token, nil)
	if err != nil {
		switch statusCode(err) {
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return nil, apperrors.Wrapf(apperrors.ErrOrganizationNotFound, "[betterauth.GetOrganizationInfo] %s", organizationID)
		}
		return nil, err
	}

	var org organizations.Organization
	ok, err := decode(RouteFullOrganization, resp.body, &org)
	if err != nil {
		return nil, err
	}
	if !ok || org.ID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrOrganizationNotFound, "[betterauth.GetOrganizationInfo] %s", organizationID)
	}
	return &org, nil
}

// SwitchOrganization changes the active organization server-side. Callers
// refresh any cached page data themselves.
func (s *Session) SwitchOrganization(ctx context.Context, organizationID string) error {
	_, err := s.client.do(ctx, http.MethodPost, RouteSetActive, nil, s.token, map[string]string{"organizationId": organizationID})
	return err
}
