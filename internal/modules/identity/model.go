// README: User accounts and the closed role enumeration.
package identity

import (
	"fmt"
	"time"

	"revline/internal/types"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleOperator   Role = "operator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// ParseRole rejects anything outside the closed set so an unrecognized
// role string can never reach the engine or the visibility filter.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleOperator, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsAdmin reports whether the role carries unrestricted read access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID           types.ID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Claims is the verified identity attached to a request.
type Claims struct {
	UserID   types.ID
	Username string
	Role     Role
	Exp      int64
}
