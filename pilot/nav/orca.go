package nav

import (
	"math"
	"sort"

	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// minSeparation is the floor below which two agents are treated as
// coincident; the solver then pushes straight away instead of dividing by a
// vanishing distance.
const minSeparation = 1e-6

// Line is an ORCA half-plane constraint: permitted velocities lie on the
// left of the directed line through Point along Direction.
type Line struct {
	Point     vector.Vector2
	Direction vector.Vector2
}

// Solve returns the velocity closest to the agent's preferred velocity that
// satisfies every pairwise reciprocal velocity-obstacle constraint, bounded
// by the agent's max speed.
//
// Avoidance responsibility is split evenly between the members of each pair,
// so two agents solving independently do not oscillate. When crowding makes
// the constraint set infeasible the solver falls back to the velocity
// minimizing the worst constraint violation; it never errors.
//
// The result is deterministic and independent of the neighbor enumeration
// order: constraints are accumulated in agent-id order.
func Solve(agent Agent, neighbors []Agent, params OrcaParams) vector.Vector2 {
	sorted := make([]Agent, len(neighbors))
	copy(sorted, neighbors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	lines := make([]Line, 0, len(sorted))
	for _, neighbor := range sorted {
		if neighbor.ID == agent.ID {
			continue
		}
		lines = append(lines, orcaLine(agent, neighbor, params.TimeHorizon))
	}

	result, failed := linearProgram2(lines, agent.MaxSpeed, agent.PreferredVelocity, false)
	if failed < len(lines) {
		result = linearProgram3(lines, failed, agent.MaxSpeed, result)
	}

	return result
}

// orcaLine derives the half-plane constraint induced on the agent by one
// neighbor, following the reciprocal velocity-obstacle construction of
// van den Berg et al.
func orcaLine(agent Agent, neighbor Agent, timeHorizon float64) Line {
	invTimeHorizon := 1.0 / timeHorizon

	relativePosition := neighbor.Position.Sub(agent.Position)
	relativeVelocity := agent.Velocity.Sub(neighbor.Velocity)

	// Coincident agents: manufacture a deterministic separation axis so the
	// construction below degrades to "push straight away" instead of NaN.
	if relativePosition.Mag() < minSeparation {
		relativePosition = vector.MakeVector2(minSeparation, 0)
	}

	distSq := relativePosition.MagSq()
	combinedRadius := agent.Radius + neighbor.Radius
	combinedRadiusSq := combinedRadius * combinedRadius

	var direction vector.Vector2
	var u vector.Vector2

	if distSq > combinedRadiusSq {
		// Not currently colliding: constrain against the velocity obstacle
		// truncated at timeHorizon.
		w := relativeVelocity.Sub(relativePosition.MultScalar(invTimeHorizon))
		wLengthSq := w.MagSq()

		dotProduct := w.Dot(relativePosition)
		if dotProduct < 0 && dotProduct*dotProduct > combinedRadiusSq*wLengthSq {
			// Project on the cut-off arc.
			wLength := math.Sqrt(wLengthSq)
			unitW := w.DivScalar(wLength)

			direction = unitW.OrthogonalClockwise()
			u = unitW.MultScalar(combinedRadius*invTimeHorizon - wLength)
		} else {
			// Project on the nearer leg of the cone.
			leg := math.Sqrt(distSq - combinedRadiusSq)
			rx, ry := relativePosition.Get()

			if relativePosition.Cross(w) > 0 {
				direction = vector.MakeVector2(rx*leg-ry*combinedRadius, rx*combinedRadius+ry*leg).DivScalar(distSq)
			} else {
				direction = vector.MakeVector2(rx*leg+ry*combinedRadius, -rx*combinedRadius+ry*leg).DivScalar(distSq).MultScalar(-1)
			}

			u = direction.MultScalar(relativeVelocity.Dot(direction)).Sub(relativeVelocity)
		}
	} else {
		// Already overlapping: maximal urgency, resolve within one horizon.
		w := relativeVelocity.Sub(relativePosition.MultScalar(invTimeHorizon))
		wLength := w.Mag()

		var unitW vector.Vector2
		if wLength < minSeparation {
			unitW = relativePosition.Normalize().MultScalar(-1)
		} else {
			unitW = w.DivScalar(wLength)
		}

		direction = unitW.OrthogonalClockwise()
		u = unitW.MultScalar(combinedRadius*invTimeHorizon - wLength)
	}

	// Each agent takes half of the required velocity change.
	return Line{
		Point:     agent.Velocity.Add(u.MultScalar(0.5)),
		Direction: direction,
	}
}

// linearProgram1 optimizes along the boundary of constraint lineNo, subject
// to every earlier constraint and the speed disk. Reports false when the
// feasible interval on that boundary is empty.
func linearProgram1(lines []Line, lineNo int, radius float64, optVelocity vector.Vector2, directionOpt bool) (vector.Vector2, bool) {
	dotProduct := lines[lineNo].Point.Dot(lines[lineNo].Direction)
	discriminant := dotProduct*dotProduct + radius*radius - lines[lineNo].Point.MagSq()

	if discriminant < 0 {
		// The speed disk misses constraint lineNo entirely.
		return vector.MakeNullVector2(), false
	}

	sqrtDiscriminant := math.Sqrt(discriminant)
	tLeft := -dotProduct - sqrtDiscriminant
	tRight := -dotProduct + sqrtDiscriminant

	for i := 0; i < lineNo; i++ {
		denominator := lines[lineNo].Direction.Cross(lines[i].Direction)
		numerator := lines[i].Direction.Cross(lines[lineNo].Point.Sub(lines[i].Point))

		if math.Abs(denominator) <= minSeparation {
			// Parallel boundaries.
			if numerator < 0 {
				return vector.MakeNullVector2(), false
			}
			continue
		}

		t := numerator / denominator
		if denominator >= 0 {
			tRight = math.Min(tRight, t)
		} else {
			tLeft = math.Max(tLeft, t)
		}

		if tLeft > tRight {
			return vector.MakeNullVector2(), false
		}
	}

	var t float64
	if directionOpt {
		if optVelocity.Dot(lines[lineNo].Direction) > 0 {
			t = tRight
		} else {
			t = tLeft
		}
	} else {
		t = lines[lineNo].Direction.Dot(optVelocity.Sub(lines[lineNo].Point))
		if t < tLeft {
			t = tLeft
		} else if t > tRight {
			t = tRight
		}
	}

	return lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(t)), true
}

// linearProgram2 finds the point of the speed disk closest to optVelocity
// satisfying the constraints in order; it returns the index of the first
// constraint that could not be satisfied (len(lines) on full success)
// together with the best velocity found so far.
func linearProgram2(lines []Line, radius float64, optVelocity vector.Vector2, directionOpt bool) (vector.Vector2, int) {
	var result vector.Vector2

	if directionOpt {
		// optVelocity is a unit direction: optimize to the disk boundary.
		result = optVelocity.MultScalar(radius)
	} else if optVelocity.MagSq() > radius*radius {
		result = optVelocity.Normalize().MultScalar(radius)
	} else {
		result = optVelocity
	}

	for i := range lines {
		if lines[i].Direction.Cross(lines[i].Point.Sub(result)) > 0 {
			tempResult := result

			newResult, ok := linearProgram1(lines, i, radius, optVelocity, directionOpt)
			if !ok {
				return tempResult, i
			}
			result = newResult
		}
	}

	return result, len(lines)
}

// linearProgram3 is the crowded fallback: starting from the first failed
// constraint it minimizes the maximum violation over all constraints, which
// keeps bots pushing apart instead of clipping through each other.
func linearProgram3(lines []Line, beginLine int, radius float64, result vector.Vector2) vector.Vector2 {
	distance := 0.0

	for i := beginLine; i < len(lines); i++ {
		if lines[i].Direction.Cross(lines[i].Point.Sub(result)) <= distance {
			continue
		}

		projLines := make([]Line, 0, i)
		for j := 0; j < i; j++ {
			var line Line

			determinant := lines[i].Direction.Cross(lines[j].Direction)
			if math.Abs(determinant) <= minSeparation {
				if lines[i].Direction.Dot(lines[j].Direction) > 0 {
					// Same direction: constraint j is redundant here.
					continue
				}
				line.Point = lines[i].Point.Add(lines[j].Point).MultScalar(0.5)
			} else {
				t := lines[j].Direction.Cross(lines[i].Point.Sub(lines[j].Point)) / determinant
				line.Point = lines[i].Point.Add(lines[i].Direction.MultScalar(t))
			}

			line.Direction = lines[j].Direction.Sub(lines[i].Direction).Normalize()
			projLines = append(projLines, line)
		}

		tempResult := result

		newResult, failed := linearProgram2(projLines, radius, lines[i].Direction.OrthogonalCounterClockwise(), true)
		if failed < len(projLines) {
			// Numerically on the edge; keep the previous best.
			result = tempResult
		} else {
			result = newResult
		}

		distance = lines[i].Direction.Cross(lines[i].Point.Sub(result))
	}

	return result
}
