package number

import (
	"math"
	"strconv"
)

var epsilon float64 = 0.000001

func IsZero(f float64) bool {
	return math.Abs(f) < epsilon
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func DegreeToRadian(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func RadianToDegree(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func Clamp(f float64, min float64, max float64) float64 {
	if f < min {
		return min
	}

	if f > max {
		return max
	}

	return f
}

func FloatToStr(f float64, places int) string {
	return strconv.FormatFloat(f, 'f', places, 64)
}
