package server

import (
	"net/http"

	"github.com/jrsteele09/moto-session/betterauth"
	"github.com/jrsteele09/moto-session/internal/utils"
)

type activeRoleResponse struct {
	Role         *string `json:"role"`
	IsAdmin      bool    `json:"isAdmin"`
	IsSupervisor bool    `json:"isSupervisor"`
}

type switchOrganizationRequest struct {
	OrganizationID string `json:"organizationId"`
}

// baSession binds the request's BetterAuth cookie, answering 401 itself when
// there is none.
func (s *Server) baSession(w http.ResponseWriter, r *http.Request) (*betterauth.Session, bool) {
	if s.betterAuth == nil {
		writeJSONError(w, "unsupported", "Organizations are not enabled", http.StatusNotImplemented)
		return nil, false
	}
	handle := s.betterAuthHandle(r)
	if handle == "" {
		writeJSONError(w, "unauthenticated", "No active session", http.StatusUnauthorized)
		return nil, false
	}
	return s.betterAuth.Session(handle), true
}

// ActiveRoleHandler resolves the caller's role in the active organization.
// The role is looked up on every request.
func (s *Server) ActiveRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.baSession(w, r)
		if !ok {
			return
		}

		role, err := session.GetActiveRole(r.Context())
		if err != nil {
			writeProviderError(w, err)
			return
		}

		resp := activeRoleResponse{}
		if role != nil {
			resp.Role = utils.Ptr(role.String())
			resp.IsAdmin = role.IsAdmin()
			resp.IsSupervisor = role.IsSupervisor()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// OrganizationHandler returns one organization the caller belongs to.
func (s *Server) OrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.baSession(w, r)
		if !ok {
			return
		}

		org, err := session.GetOrganizationInfo(r.Context(), r.PathValue("id"))
		if err != nil {
			writeProviderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	}
}

// SwitchOrganizationHandler changes the active organization. The browser
// reloads its own page data afterwards.
func (s *Server) SwitchOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.baSession(w, r)
		if !ok {
			return
		}

		var req switchOrganizationRequest
		if err := decodeJSON(w, r, &req); err != nil || req.OrganizationID == "" {
			writeJSONError(w, "invalid_request", "organizationId is required", http.StatusBadRequest)
			return
		}

		if err := session.SwitchOrganization(r.Context(), req.OrganizationID); err != nil {
			writeProviderError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
