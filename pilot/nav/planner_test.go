package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotswarm/dotswarm/common/utils/vector"
)

func TestPlanNilGoal(t *testing.T) {
	cfg := PlannerConfig{MaxSpeed: 0.5, Threshold: 30, MaxDeviation: math.Pi}

	pref := cfg.Plan(vector.MakeVector2(0.2, 0.3), 0, nil)

	assert.True(t, pref.IsNull())
}

func TestPlanArrivedWithinThreshold(t *testing.T) {
	cfg := PlannerConfig{MaxSpeed: 0.5, Threshold: 30, MaxDeviation: math.Pi}

	// 25 mm from the goal, under the 30 mm threshold.
	goal := vector.MakeVector2(0.025, 0)
	pref := cfg.Plan(vector.MakeNullVector2(), 0, &goal)

	assert.True(t, pref.IsNull())
}

func TestPlanFullSpeedTowardGoal(t *testing.T) {
	cfg := PlannerConfig{MaxSpeed: 0.5, Threshold: 30, MaxDeviation: math.Pi}

	// Heading 0 degrees faces positive y; a goal straight up needs no turn.
	goal := vector.MakeVector2(0, 1)
	pref := cfg.Plan(vector.MakeNullVector2(), 0, &goal)

	assert.InDelta(t, 0, pref.GetX(), 1e-9)
	assert.InDelta(t, 0.5, pref.GetY(), 1e-9)
}

func TestPlanHeadingConvention(t *testing.T) {
	cfg := PlannerConfig{MaxSpeed: 1, Threshold: 30, MaxDeviation: math.Pi}

	goal := vector.MakeVector2(1, 0)

	// -90 degrees faces positive x, straight at the goal.
	pref := cfg.Plan(vector.MakeNullVector2(), -90, &goal)
	assert.InDelta(t, 1, pref.GetX(), 1e-9)
	assert.InDelta(t, 0, pref.GetY(), 1e-9)

	// 90 degrees faces negative x; with an unrestricted cone the bot still
	// turns all the way around.
	pref = cfg.Plan(vector.MakeNullVector2(), 90, &goal)
	assert.InDelta(t, 1, pref.GetX(), 1e-9)
}

func TestPlanClampsToSteeringCone(t *testing.T) {
	maxDeviation := 30 * math.Pi / 180
	cfg := PlannerConfig{MaxSpeed: 0.5, Threshold: 30, MaxDeviation: maxDeviation}

	// Bot faces positive y, goal is straight behind at negative y: the
	// requested turn is pi, far beyond the cone.
	goal := vector.MakeVector2(0, -1)
	pref := cfg.Plan(vector.MakeNullVector2(), 0, &goal)

	heading := math.Pi / 2
	gotDelta := math.Abs(pref.Angle() - heading)
	assert.InDelta(t, maxDeviation, gotDelta, 1e-9)
	assert.InDelta(t, 0.5, pref.Mag(), 1e-9)
}

func TestPlanBiasShiftsTheCourse(t *testing.T) {
	bias := 0.2
	cfg := PlannerConfig{MaxSpeed: 0.5, Threshold: 30, MaxDeviation: math.Pi, Bias: bias}

	goal := vector.MakeVector2(0, 1)
	pref := cfg.Plan(vector.MakeNullVector2(), 0, &goal)

	assert.InDelta(t, math.Pi/2+bias, pref.Angle(), 1e-9)
}

func TestPlanSpeedRamp(t *testing.T) {
	cfg := PlannerConfig{
		MaxSpeed:     0.5,
		Threshold:    30,
		MaxDeviation: math.Pi,
		RampDistance: 0.4,
	}

	goal := vector.MakeVector2(0, 0.2)
	pref := cfg.Plan(vector.MakeNullVector2(), 0, &goal)

	// Half the ramp distance left, half the max speed.
	assert.InDelta(t, 0.25, pref.Mag(), 1e-9)
}

func TestDistanceToGoal(t *testing.T) {
	d := DistanceToGoal(vector.MakeVector2(1, 1), vector.MakeVector2(4, 5))
	assert.InDelta(t, 5, d, 1e-12)
}
