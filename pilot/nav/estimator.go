package nav

import (
	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// EstimateVelocity derives an instantaneous velocity from the last two
// samples of a bot's position history.
//
// dt is the nominal control-loop tick period, not a measured inter-sample
// interval: under scheduler delay the estimate degrades accordingly. This is
// a deliberate simplification, do not substitute a measured dt.
func EstimateVelocity(history []types.Position, dt float64) vector.Vector2 {
	if len(history) < 2 {
		return vector.MakeNullVector2()
	}

	prev := history[len(history)-2].ToVector2()
	curr := history[len(history)-1].ToVector2()

	return curr.Sub(prev).DivScalar(dt)
}
