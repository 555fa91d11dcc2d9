package jwt

import "github.com/golang-jwt/jwt/v5"

// PortalClaims are the claims of a portal access token.
type PortalClaims struct {
	jwt.RegisteredClaims
	Club string `json:"club,omitempty"`
	Role string `json:"role"`
}

type Role string

const (
	RoleViewer     Role = "viewer"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// HasRole reports whether the token was issued for role.
func (c *PortalClaims) HasRole(role Role) bool {
	return c != nil && Role(c.Role) == role
}
