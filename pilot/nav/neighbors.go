package nav

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// NeighborIndex is a per-tick spatial index over the agent snapshot, used to
// bound the constraint set fed to the solver on large fleets. It is built
// fresh every tick and never mutated afterwards, so concurrent queries from
// the per-agent solver goroutines are safe.
type NeighborIndex struct {
	tree   *rtreego.Rtree
	agents []Agent
}

type agentSpatial struct {
	agent Agent
	rect  rtreego.Rect
}

func (s *agentSpatial) Bounds() rtreego.Rect {
	return s.rect
}

func BuildNeighborIndex(agents []Agent) *NeighborIndex {
	spatials := make([]rtreego.Spatial, 0, len(agents))

	for _, agent := range agents {
		x, y := agent.Position.Get()
		r := agent.Radius

		rect, err := rtreego.NewRect([]float64{x - r, y - r}, []float64{2 * r, 2 * r})
		if err != nil {
			// Negative radius never reaches here; validated upstream.
			continue
		}

		spatials = append(spatials, &agentSpatial{agent: agent, rect: rect})
	}

	return &NeighborIndex{
		tree:   rtreego.NewTree(2, 25, 50, spatials...),
		agents: agents,
	}
}

// Neighbors returns the agents within cutoff of the given agent, nearest
// first, capped at maxNeighbors. cutoff <= 0 means no distance bound and
// maxNeighbors <= 0 means no cap; with both unset every other agent is a
// neighbor, which is the default for small fleets.
func (idx *NeighborIndex) Neighbors(of Agent, cutoff float64, maxNeighbors int) []Agent {
	var candidates []Agent

	if cutoff > 0 {
		x, y := of.Position.Get()
		region, err := rtreego.NewRect([]float64{x - cutoff, y - cutoff}, []float64{2 * cutoff, 2 * cutoff})
		if err != nil {
			return nil
		}

		for _, match := range idx.tree.SearchIntersect(region) {
			candidate := match.(*agentSpatial).agent
			if candidate.ID == of.ID {
				continue
			}
			if of.Position.DistanceTo(candidate.Position) <= cutoff {
				candidates = append(candidates, candidate)
			}
		}
	} else {
		for _, candidate := range idx.agents {
			if candidate.ID != of.ID {
				candidates = append(candidates, candidate)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := of.Position.DistanceTo(candidates[i].Position)
		dj := of.Position.DistanceTo(candidates[j].Position)
		if di == dj {
			return candidates[i].ID < candidates[j].ID
		}
		return di < dj
	})

	if maxNeighbors > 0 && len(candidates) > maxNeighbors {
		candidates = candidates[:maxNeighbors]
	}

	return candidates
}
