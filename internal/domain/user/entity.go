package user

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

type Role string

const (
	RoleAdmin          Role = "admin"           // Full access
	RolePayrollOfficer Role = "payroll_officer" // Runs payroll and manages loans
	RoleEmployee       Role = "employee"        // Self-service only
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePayrollOfficer, RoleEmployee:
		return true
	}
	return false
}

// Identity is the authenticated caller as carried in the access token.
type Identity struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IdentityFromContext reads the verified JWT claims placed on ctx by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrMissingIdentity
	}

	id := Identity{UserID: userID}
	if role, ok := claims["role"].(string); ok {
		id.Role = Role(role)
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		id.EmployeeID = &employeeID
	}
	return id, nil
}

// CurrentEmployeeID returns the employee linked to the caller, or
// ErrEmployeeIdentityRequired when the token carries none.
func CurrentEmployeeID(ctx context.Context) (string, error) {
	id, err := IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}
	if id.EmployeeID == nil {
		return "", ErrEmployeeIdentityRequired
	}
	return *id.EmployeeID, nil
}
