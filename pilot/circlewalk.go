package pilot

import (
	"math"
	"sync"
	"time"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// CircleWalk keeps the fleet orbiting on one of two concentric
// circles: each tick every bot takes a tangential step of MaxSpeed, then
// the candidate position is projected hard back onto whichever of the two
// radii is nearer. The walk has no convergence condition; it runs until
// stopped.
type CircleWalk struct {
	registry FleetRegistry

	Center      vector.Vector2
	RadiusInner float64
	RadiusOuter float64
	MaxSpeed    float64
	Threshold   float64
	TickPeriod  time.Duration

	stopticking chan struct{}
	stoponce    sync.Once
}

func NewCircleWalk(registry FleetRegistry, center vector.Vector2, radiusInner float64, radiusOuter float64) *CircleWalk {
	return &CircleWalk{
		registry:    registry,
		Center:      center,
		RadiusInner: radiusInner,
		RadiusOuter: radiusOuter,
		MaxSpeed:    0.055,
		Threshold:   20,
		TickPeriod:  500 * time.Millisecond,
		stopticking: make(chan struct{}),
	}
}

func (w *CircleWalk) Stop() {
	w.stoponce.Do(func() {
		close(w.stopticking)
	})
}

func (w *CircleWalk) Run() error {
	for {
		select {
		case <-w.stopticking:
			return nil
		default:
		}

		bots, err := w.registry.FetchActiveBots()
		if err != nil {
			return err
		}

		for _, bot := range bots {
			if bot.Position == nil {
				continue
			}

			position := bot.Position.ToVector2()
			radial := position.Sub(w.Center)
			dist := radial.Mag()
			if dist == 0 {
				// Dead center: no tangent direction exists.
				continue
			}

			targetRadius := w.RadiusOuter
			if math.Abs(dist-w.RadiusInner) < math.Abs(dist-w.RadiusOuter) {
				targetRadius = w.RadiusInner
			}

			// Tangential step, then hard projection back onto the chosen
			// circle.
			tangent := radial.Normalize().OrthogonalCounterClockwise()
			candidate := position.Add(tangent.MultScalar(w.MaxSpeed))

			offset := candidate.Sub(w.Center)
			if offset.Mag() > 0 {
				candidate = w.Center.Add(offset.SetMag(targetRadius))
			}

			command := types.WaypointCommand{
				Threshold: w.Threshold,
				Waypoints: []types.Position{types.MakePosition(candidate)},
			}

			if err := w.registry.SendWaypoints(bot.Address, command); err != nil {
				utils.Debug("pilot", "circle walk dispatch: "+err.Error())
			}
		}

		select {
		case <-w.stopticking:
			return nil
		case <-time.After(w.TickPeriod):
		}
	}
}
