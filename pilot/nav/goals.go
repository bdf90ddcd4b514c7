package nav

import (
	"sort"
	"strconv"

	bettererrors "github.com/xtuc/better-errors"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// GoalMapping maps a bot address to its target point. Built once per
// convergence run and held immutable for the whole run.
type GoalMapping map[string]vector.Vector2

// GoalPolicy turns a fleet snapshot into a goal mapping. Policies are pure:
// same snapshot, same mapping.
type GoalPolicy interface {
	Assign(bots []types.BotState) (GoalMapping, error)
}

// SwapPolicy sends each bot to the position currently held by its opposite
// partner (index + n/2 mod n). Requires an even fleet; an odd fleet is a
// configuration error reported before any command is issued.
type SwapPolicy struct{}

func (SwapPolicy) Assign(bots []types.BotState) (GoalMapping, error) {
	if len(bots)%2 != 0 {
		return nil, bettererrors.
			New("swap goal policy needs an even fleet").
			SetContext("fleet size", strconv.Itoa(len(bots)))
	}

	goals := make(GoalMapping, len(bots))
	for index, bot := range bots {
		opposite := bots[(index+len(bots)/2)%len(bots)]
		goals[bot.Address] = opposite.Position.ToVector2()
	}

	return goals, nil
}

// RowPolicy queues the fleet on a line of goal slots starting at Anchor and
// spaced along +y: nearest bot gets the anchor row, farthest the outermost.
type RowPolicy struct {
	Anchor  vector.Vector2
	Spacing float64
}

func (p RowPolicy) Assign(bots []types.BotState) (GoalMapping, error) {
	ranked := make([]types.BotState, len(bots))
	copy(ranked, bots)

	// Stable: bots equidistant from the anchor keep their enumeration
	// order, so repeated runs produce the same rows.
	sort.SliceStable(ranked, func(i, j int) bool {
		di := ranked[i].Position.ToVector2().DistanceTo(p.Anchor)
		dj := ranked[j].Position.ToVector2().DistanceTo(p.Anchor)
		return di < dj
	})

	goals := make(GoalMapping, len(ranked))
	for row, bot := range ranked {
		goals[bot.Address] = p.Anchor.Add(vector.MakeVector2(0, float64(row)*p.Spacing))
	}

	return goals, nil
}
