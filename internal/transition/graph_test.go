package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func edge(from, to string, roles ...domain.Role) domain.StatusTransition {
	return domain.StatusTransition{
		ID:           from + "->" + to,
		FromStatusID: from,
		ToStatusID:   to,
		AllowedRoles: roles,
		IsActive:     true,
	}
}

func TestGraph_CanTransition(t *testing.T) {
	graph := NewGraph([]domain.StatusTransition{
		edge("open", "in-progress", domain.RoleOperator, domain.RoleAdmin),
		edge("open", "closed", domain.RoleOperator, domain.RoleAdmin),
		edge("in-progress", "resolved", domain.RoleOperator),
		edge("resolved", "closed", domain.RoleCustomer, domain.RoleOperator, domain.RoleAdmin),
	})

	t.Run("permitted role passes", func(t *testing.T) {
		assert.NoError(t, graph.CanTransition("open", "in-progress", domain.RoleOperator))
		assert.NoError(t, graph.CanTransition("resolved", "closed", domain.RoleCustomer))
	})

	t.Run("missing edge is invalid, not forbidden", func(t *testing.T) {
		err := graph.CanTransition("open", "resolved", domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("role outside the set is forbidden, not invalid", func(t *testing.T) {
		// Scenario: open->closed only for operator/admin; a customer is rejected.
		err := graph.CanTransition("open", "closed", domain.RoleCustomer)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("no admin override on edges excluding admin", func(t *testing.T) {
		err := graph.CanTransition("in-progress", "resolved", domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("self transitions need an explicit edge", func(t *testing.T) {
		err := graph.CanTransition("open", "open", domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		withSelf := NewGraph([]domain.StatusTransition{
			edge("open", "open", domain.RoleAdmin),
		})
		assert.NoError(t, withSelf.CanTransition("open", "open", domain.RoleAdmin))
	})

	t.Run("inactive edges are ignored", func(t *testing.T) {
		inactive := edge("a", "b", domain.RoleAdmin)
		inactive.IsActive = false
		graph := NewGraph([]domain.StatusTransition{inactive})
		assert.ErrorIs(t, graph.CanTransition("a", "b", domain.RoleAdmin), domain.ErrInvalidTransition)
	})
}

func TestGraph_AllowedTargets(t *testing.T) {
	graph := NewGraph([]domain.StatusTransition{
		edge("open", "in-progress", domain.RoleOperator, domain.RoleAdmin),
		edge("open", "cancelled", domain.RoleCustomer, domain.RoleAdmin),
		edge("open", "closed", domain.RoleAdmin),
	})

	assert.Equal(t, []string{"cancelled", "closed", "in-progress"}, graph.AllowedTargets("open", domain.RoleAdmin))
	assert.Equal(t, []string{"cancelled"}, graph.AllowedTargets("open", domain.RoleCustomer))
	assert.Empty(t, graph.AllowedTargets("closed", domain.RoleAdmin))
}
