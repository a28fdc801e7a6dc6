package domain

// Role enumerates the canonical actor roles for transition checks.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether the role is one of the canonical three.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// ParseRole validates and normalizes a role string at the boundary.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
