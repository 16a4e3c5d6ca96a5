package domain

// Role is the sole authorization input of an account.
type Role string

const (
	// RoleUnknown marks a role that could not be resolved (missing account
	// record, unreadable row, unrecognised value). It behaves as RoleUser and
	// never satisfies an elevated requirement.
	RoleUnknown   Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored value to a Role; anything unrecognised is RoleUnknown.
func ParseRole(v string) Role {
	switch Role(v) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(v)
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return ParseRole(string(r)) != RoleUnknown
}

// Effective returns the role used for decisions: unknown collapses to user.
func (r Role) Effective() Role {
	if !r.Valid() {
		return RoleUser
	}
	return r
}

// Elevated reports whether r grants more than a regular account.
func (r Role) Elevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Satisfies reports whether r meets required. The comparison is exact on the
// effective role, so an unknown role can only ever satisfy RoleUser.
func (r Role) Satisfies(required Role) bool {
	if !required.Valid() {
		return false
	}
	return r.Effective() == required
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}
