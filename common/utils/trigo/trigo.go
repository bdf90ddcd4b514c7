package trigo

import (
	"math"

	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// HeadingToRad converts a bot heading into standard mathematical radians.
//
// The heading sensor reports degrees with 0° pointing "up" (arena north) and
// positive angles clockwise; the +90° offset encodes the physical mounting
// convention of the sensor and must not be changed.
func HeadingToRad(headingDeg float64) float64 {
	rad := (headingDeg + 90) * math.Pi / 180.0
	return math.Atan2(math.Sin(rad), math.Cos(rad))
}

// RadToHeading is the inverse of HeadingToRad, used by simulated fleets.
func RadToHeading(rad float64) float64 {
	deg := rad*180.0/math.Pi - 90
	return math.Mod(deg+360, 360)
}

// SignedAngleDiff wraps (a - b) into (-π, π].
func SignedAngleDiff(a float64, b float64) float64 {
	delta := a - b
	return math.Atan2(math.Sin(delta), math.Cos(delta))
}

// UnitVectorFromAngle returns the unit vector pointing at the given angle in
// standard mathematical convention.
func UnitVectorFromAngle(rad float64) vector.Vector2 {
	return vector.MakeVector2(math.Cos(rad), math.Sin(rad))
}
