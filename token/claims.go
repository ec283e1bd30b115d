package token

// Claims is the subset of the access-token payload the session layer reads.
type Claims struct {
	ID        string   // "id" (or "sub"), numbers rendered without decimals
	Username  string   // "username"
	FirstName string   // "first_name"
	Email     string   // "email"
	Roles     []string // "roles", nil when absent

	// RolesPresent distinguishes an absent "roles" claim from an empty one.
	RolesPresent bool

	// Raw holds the full decoded payload.
	Raw map[string]any
}
