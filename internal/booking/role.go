package booking

import "fmt"

// Role is a staff dashboard role. Public clients (booking creation, rating,
// budget approval) act through possession tokens and carry no role.
type Role string

const (
	RoleCleaner     Role = "cleaner"
	RoleHeadCleaner Role = "head_cleaner"
	RoleAccountant  Role = "accountant"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCleaner, RoleHeadCleaner, RoleAccountant, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}
