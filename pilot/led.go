package pilot

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
)

// hsvToRGB converts hue/saturation/value in [0,1] to 8-bit RGB.
func hsvToRGB(h float64, s float64, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

// RainbowFleet paints the fleet with evenly-spaced vivid hues, one per bot,
// in snapshot order. Used at the start of a convergence run so operators
// can tell bots apart on camera.
func RainbowFleet(registry FleetRegistry) error {
	bots, err := registry.FetchActiveBots()
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i, bot := range bots {
		address := bot.Address
		r, green, b := hsvToRGB(float64(i)/float64(len(bots)), 1.0, 1.0)

		g.Go(func() error {
			return registry.SendLedColor(address, types.RgbLedCommand{
				Red:   r,
				Green: green,
				Blue:  b,
			})
		})
	}

	return g.Wait()
}

// Blinky flashes every bot a new random vivid color each period until
// stopped. Purely a demo/diagnostic behavior.
type Blinky struct {
	registry FleetRegistry
	period   time.Duration

	stopticking chan struct{}
	stoponce    sync.Once
}

func NewBlinky(registry FleetRegistry, period time.Duration) *Blinky {
	return &Blinky{
		registry:    registry,
		period:      period,
		stopticking: make(chan struct{}),
	}
}

func (b *Blinky) Stop() {
	b.stoponce.Do(func() {
		close(b.stopticking)
	})
}

func (b *Blinky) Run() error {
	for {
		select {
		case <-b.stopticking:
			return nil
		default:
		}

		bots, err := b.registry.FetchActiveBots()
		if err != nil {
			return err
		}

		var g errgroup.Group
		for _, bot := range bots {
			address := bot.Address
			r, green, blue := hsvToRGB(rand.Float64(), 1.0, 1.0)

			g.Go(func() error {
				return b.registry.SendLedColor(address, types.RgbLedCommand{
					Red:   r,
					Green: green,
					Blue:  blue,
				})
			})
		}

		if err := g.Wait(); err != nil {
			utils.Debug("pilot", "led dispatch: "+err.Error())
		}

		select {
		case <-b.stopticking:
			return nil
		case <-time.After(b.period):
		}
	}
}
