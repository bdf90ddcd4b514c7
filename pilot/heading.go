package pilot

import (
	"math"
	"sync"
	"time"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/common/utils/number"
	"github.com/dotswarm/dotswarm/common/utils/trigo"
)

// HeadingAlignment is the secondary phase run once positions have
// converged, for scenarios that need a final shared orientation: each tick
// every bot outside the tolerance band gets a fixed-magnitude differential
// turn, everyone else a stop, until the whole fleet is aligned.
type HeadingAlignment struct {
	registry FleetRegistry

	// TargetDeg / ToleranceDeg are in sensor degrees.
	TargetDeg    float64
	ToleranceDeg float64

	// TurnSpeed is the raw motor magnitude of one turn step.
	TurnSpeed int8

	TickPeriod time.Duration

	stopticking chan struct{}
	stoponce    sync.Once
}

func NewHeadingAlignment(registry FleetRegistry, targetDeg float64, toleranceDeg float64) *HeadingAlignment {
	return &HeadingAlignment{
		registry:     registry,
		TargetDeg:    targetDeg,
		ToleranceDeg: toleranceDeg,
		TurnSpeed:    50,
		TickPeriod:   defaultTickPeriod,
		stopticking:  make(chan struct{}),
	}
}

func (h *HeadingAlignment) Stop() {
	h.stoponce.Do(func() {
		close(h.stopticking)
	})
}

func (h *HeadingAlignment) Run() (Status, error) {
	for {
		select {
		case <-h.stopticking:
			return StatusCancelled, nil
		default:
		}

		bots, err := h.registry.FetchActiveBots()
		if err != nil {
			return StatusCancelled, err
		}

		allNearTarget := true

		for _, bot := range bots {
			if bot.Direction == nil {
				utils.Debug("pilot", "bot "+bot.Address+" has no heading; excluded this tick")
				continue
			}

			diff := trigo.SignedAngleDiff(
				number.DegreeToRadian(*bot.Direction),
				number.DegreeToRadian(h.TargetDeg),
			)

			var command types.MoveRawCommand
			if math.Abs(number.RadianToDegree(diff)) >= h.ToleranceDeg {
				allNearTarget = false
				command = types.MoveRawCommand{LeftY: h.TurnSpeed, RightY: -h.TurnSpeed}
			}

			if err := h.registry.SendMoveRaw(bot.Address, command); err != nil {
				utils.Debug("pilot", "move_raw dispatch: "+err.Error())
			}
		}

		if allNearTarget {
			return StatusConverged, nil
		}

		select {
		case <-h.stopticking:
			return StatusCancelled, nil
		case <-time.After(h.TickPeriod):
		}
	}
}
