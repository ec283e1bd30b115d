package organizations

import "time"

// Organization is a tenant (school, daycare or operator) as returned by the
// BetterAuth organization plugin.
type Organization struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Logo      string         `json:"logo,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Members   []Member       `json:"members,omitempty"`
}

// Member is a user's membership in an organization.
type Member struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
