package nav

import (
	"math"

	"github.com/dotswarm/dotswarm/common/utils/number"
	"github.com/dotswarm/dotswarm/common/utils/trigo"
	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// DefaultDistanceScale converts position-frame units to the millimeter
// scale the arrival threshold is expressed in. The unit mismatch is
// inherited from the fleet firmware; keep it visible, do not fold it into
// the threshold.
const DefaultDistanceScale = 1000.0

// PlannerConfig parameterizes the preferred-velocity computation. Call
// sites legitimately differ on Bias, MaxDeviation and RampDistance; keep
// them here rather than forking the planner.
type PlannerConfig struct {
	MaxSpeed float64

	// Threshold is the arrival distance below which the bot is considered
	// converged, in DistanceScale units (millimeters by default).
	Threshold     float64
	DistanceScale float64

	// MaxDeviation bounds the steering cone around the current heading, in
	// radians. Bots are differential-drive and cannot strafe.
	MaxDeviation float64

	// Bias is a constant steering offset in radians; a small positive value
	// gives a keep-right rule during crowd navigation.
	Bias float64

	// RampDistance enables a linear speed ramp below this distance to the
	// goal; 0 disables the ramp.
	RampDistance float64
}

// Plan computes the velocity the bot would pick absent any neighbors: full
// speed toward the goal, bent into the forward steering cone. A nil goal or
// an arrived bot yields the null vector, which the convergence loop treats
// as this bot's termination vote.
func (cfg PlannerConfig) Plan(position vector.Vector2, headingDeg float64, goal *vector.Vector2) vector.Vector2 {
	if goal == nil {
		return vector.MakeNullVector2()
	}

	toGoal := goal.Sub(position)
	dist := toGoal.Mag()

	scale := cfg.DistanceScale
	if scale == 0 {
		scale = DefaultDistanceScale
	}

	if dist*scale < cfg.Threshold {
		return vector.MakeNullVector2()
	}

	speed := cfg.MaxSpeed
	if cfg.RampDistance > 0 && dist < cfg.RampDistance {
		speed = cfg.MaxSpeed * (dist / cfg.RampDistance)
	}

	heading := trigo.HeadingToRad(headingDeg)
	angleToGoal := toGoal.Angle() + cfg.Bias

	delta := trigo.SignedAngleDiff(angleToGoal, heading)
	delta = number.Clamp(delta, -cfg.MaxDeviation, cfg.MaxDeviation)

	return trigo.UnitVectorFromAngle(heading + delta).MultScalar(speed)
}

// DistanceToGoal is the straight-line distance used both for the arrival
// test and the overshoot clamp.
func DistanceToGoal(position vector.Vector2, goal vector.Vector2) float64 {
	return math.Hypot(goal.GetX()-position.GetX(), goal.GetY()-position.GetY())
}
