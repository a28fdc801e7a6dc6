package domain

import "time"

// StatusTransition is one directed, role-gated edge between two statuses.
type StatusTransition struct {
	ID           string
	FromStatusID string
	ToStatusID   string
	AllowedRoles []Role
	IsActive     bool
	CreatedAt    time.Time
}

// Allows reports whether the given role may take this edge.
func (t StatusTransition) Allows(role Role) bool {
	for _, allowed := range t.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}
