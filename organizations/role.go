package organizations

// Role is a member's role within the active organization.
type Role string

const (
	RoleSupervisor   Role = "supervisor"   // Staff member, no administrative rights
	RoleOGSAdmin     Role = "ogsAdmin"     // Administers an after-school care site
	RoleBueroAdmin   Role = "bueroAdmin"   // Administers an office
	RoleTraegerAdmin Role = "traegerAdmin" // Administers the operating body
)

// ParseRole maps a wire value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSupervisor, RoleOGSAdmin, RoleBueroAdmin, RoleTraegerAdmin:
		return r, true
	}
	return "", false
}

// IsAdmin reports whether the role grants administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleOGSAdmin || r == RoleBueroAdmin || r == RoleTraegerAdmin
}

func (r Role) IsSupervisor() bool {
	return r == RoleSupervisor
}

func (r Role) String() string {
	return string(r)
}
