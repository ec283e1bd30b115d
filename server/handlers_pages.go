package server

import (
	"net/http"
)

type dashboardResponse struct {
	Greeting string   `json:"greeting"`
	Roles    []string `json:"roles"`
}

// DashboardHandler is a guarded page. It only runs behind RequireSession.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		name := view.User.FirstName
		if name == "" {
			name = view.User.Name
		}
		writeJSON(w, http.StatusOK, dashboardResponse{Greeting: "Hallo " + name, Roles: view.User.Roles})
	}
}
