package policy

import (
	"context"
	"sort"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Source supplies active SLA policy rows for one product+priority pair.
type Source interface {
	ListActive(ctx context.Context, productID string, priority domain.TicketPriority) ([]domain.SLAPolicy, error)
}

// Resolver selects the authoritative SLA policy for a ticket.
type Resolver struct {
	source Source
}

// NewResolver constructs a resolver over the given source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the policy for the exact (productID, priority) pair. When
// several rows are active the most recently created one wins. There is no
// fallback between priority levels; a missing policy yields ErrPolicyNotFound
// and the ticket carries no SLA obligation.
func (r *Resolver) Resolve(ctx context.Context, productID string, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	policies, err := r.source.ListActive(ctx, productID, priority)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, domain.ErrPolicyNotFound
	}
	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].CreatedAt.After(policies[j].CreatedAt)
	})
	winner := policies[0]
	return &winner, nil
}
