package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

type staticSource struct {
	policies []domain.SLAPolicy
}

func (s *staticSource) ListActive(_ context.Context, productID string, priority domain.TicketPriority) ([]domain.SLAPolicy, error) {
	var matched []domain.SLAPolicy
	for _, p := range s.policies {
		if p.IsActive && p.ProductID == productID && p.Priority == priority {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func TestResolver_Resolve(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	source := &staticSource{policies: []domain.SLAPolicy{
		{ID: "older", ProductID: "prod-x", Priority: domain.TicketPriorityHigh, ResponseTimeMinutes: 60, ResolutionTimeMinutes: 480, IsActive: true, CreatedAt: base},
		{ID: "newer", ProductID: "prod-x", Priority: domain.TicketPriorityHigh, ResponseTimeMinutes: 30, ResolutionTimeMinutes: 240, IsActive: true, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "low", ProductID: "prod-x", Priority: domain.TicketPriorityLow, ResponseTimeMinutes: 480, ResolutionTimeMinutes: 2880, IsActive: true, CreatedAt: base},
	}}
	resolver := NewResolver(source)

	t.Run("most recently created active row wins", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), "prod-x", domain.TicketPriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, "newer", got.ID)
		assert.Equal(t, 30, got.ResponseTimeMinutes)
	})

	t.Run("no fallback between priority levels", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "prod-x", domain.TicketPriorityUrgent)
		assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
	})

	t.Run("unknown product has no policy", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "prod-y", domain.TicketPriorityHigh)
		assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
	})
}
