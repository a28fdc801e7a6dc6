package transition

import (
	"sort"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Graph is the directed, role-gated edge set between statuses. It is built
// from configuration rows and holds no other state; self-edges exist only
// when explicitly configured and there is no admin override.
type Graph struct {
	edges map[string]map[string][]domain.Role
}

// NewGraph indexes active transitions. Duplicate active edges per (from, to)
// are a configuration error; the first one wins at runtime.
func NewGraph(transitions []domain.StatusTransition) *Graph {
	graph := &Graph{edges: make(map[string]map[string][]domain.Role)}
	for _, tr := range transitions {
		if !tr.IsActive {
			continue
		}
		targets, ok := graph.edges[tr.FromStatusID]
		if !ok {
			targets = make(map[string][]domain.Role)
			graph.edges[tr.FromStatusID] = targets
		}
		if _, exists := targets[tr.ToStatusID]; exists {
			continue
		}
		targets[tr.ToStatusID] = append([]domain.Role(nil), tr.AllowedRoles...)
	}
	return graph
}

// CanTransition returns nil when an active edge from->to exists and permits
// the role. ErrInvalidTransition and ErrForbidden are distinct so callers can
// render "not a valid status" vs "not authorized".
func (g *Graph) CanTransition(fromStatusID, toStatusID string, role domain.Role) error {
	roles, ok := g.edges[fromStatusID][toStatusID]
	if !ok {
		return domain.ErrInvalidTransition
	}
	for _, allowed := range roles {
		if allowed == role {
			return nil
		}
	}
	return domain.ErrForbidden
}

// AllowedTargets lists the status IDs the role may move to from the given
// status, sorted for stable output.
func (g *Graph) AllowedTargets(fromStatusID string, role domain.Role) []string {
	var targets []string
	for to := range g.edges[fromStatusID] {
		if g.CanTransition(fromStatusID, to, role) == nil {
			targets = append(targets, to)
		}
	}
	sort.Strings(targets)
	return targets
}
