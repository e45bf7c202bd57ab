package domain

// Role constants define the recognized account roles. An account may hold
// several roles at once.
const (
	RoleUser    = "User"
	RoleManager = "Manager"
	RoleAdmin   = "Admin"
)

// ValidRoles returns the set of recognized roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleManager, RoleAdmin}
}

// IsValidRole checks whether the given role string is a recognized role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// HasRole reports whether the given role set contains the role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
