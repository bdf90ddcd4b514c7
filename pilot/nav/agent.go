package nav

import (
	"errors"

	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// Agent is the per-tick view of one bot fed to the collision-avoidance
// solver. It is rebuilt from the fleet snapshot at the start of every tick
// and discarded at tick end; the only cross-tick identity is the ID.
type Agent struct {
	ID                string
	Position          vector.Vector2
	Velocity          vector.Vector2
	Radius            float64
	MaxSpeed          float64
	PreferredVelocity vector.Vector2

	// Direction is the raw heading in sensor degrees; informational only,
	// the solver never reads it.
	Direction float64
}

// OrcaParams tunes the velocity-obstacle construction. Immutable for the
// duration of a convergence run.
type OrcaParams struct {
	TimeHorizon float64
}

var (
	ErrNonFiniteState   = errors.New("agent has non-finite position or velocity")
	ErrNonPositiveShape = errors.New("agent radius and max speed must be > 0")
)

// Validate rejects agents whose state would poison the solver; the caller
// excludes them from the current tick instead of aborting it.
func (a Agent) Validate() error {
	if !a.Position.IsFinite() || !a.Velocity.IsFinite() || !a.PreferredVelocity.IsFinite() {
		return ErrNonFiniteState
	}

	if a.Radius <= 0 || a.MaxSpeed <= 0 {
		return ErrNonPositiveShape
	}

	return nil
}
