package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StaffRole scopes what a back-office token may do.
type StaffRole string

const (
	StaffRoleAdmin    StaffRole = "admin"
	StaffRoleOperator StaffRole = "operator"
	StaffRoleSupport  StaffRole = "support"
)

func (r StaffRole) IsValid() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleOperator, StaffRoleSupport:
		return true
	}
	return false
}

// CanCancelOrders reports whether the role may cancel orders and trigger
// stock restoration.
func (r StaffRole) CanCancelOrders() bool {
	return r == StaffRoleAdmin || r == StaffRoleOperator
}

// StaffTokenPayload captures the data available when minting a staff JWT.
type StaffTokenPayload struct {
	StaffID uuid.UUID
	Role    StaffRole
	JTI     string
}

// StaffTokenClaims is the typed JWT carried by back-office requests.
type StaffTokenClaims struct {
	StaffID uuid.UUID `json:"staff_id"`
	Role    StaffRole `json:"role"`
	jwt.RegisteredClaims
}
