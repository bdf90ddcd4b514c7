package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dotswarm/dotswarm/common"
	"github.com/dotswarm/dotswarm/common/registry"
	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/common/utils/number"
	"github.com/dotswarm/dotswarm/common/utils/vector"
	"github.com/dotswarm/dotswarm/pilot"
	"github.com/dotswarm/dotswarm/pilot/nav"
)

func main() {
	godotenv.Load()

	host := flag.String("host", defaultEnv("SWARM_REGISTRY_HOST", "localhost:8000"), "Registry host:port")
	policyName := flag.String("policy", "swap", "Goal policy: swap | row")
	anchorX := flag.Float64("anchor-x", 0.2, "Row policy anchor x")
	anchorY := flag.Float64("anchor-y", 0.4, "Row policy anchor y")
	spacing := flag.Float64("spacing", 0.1, "Row policy spacing between goal rows")
	tick := flag.Duration("tick", 100*time.Millisecond, "Control loop period")
	maxSpeed := flag.Float64("max-speed", 0.04, "Maximum linear speed of a bot")
	botRadius := flag.Float64("radius", 0.04, "Physical bot radius for collision avoidance")
	threshold := flag.Float64("threshold", 30, "Waypoint arrival threshold (firmware millimeters)")
	horizon := flag.Float64("horizon", 0.1, "ORCA time horizon in seconds")
	stepScale := flag.Float64("step-scale", 1.0, "Scale applied to solved velocity before emission")
	bias := flag.Float64("bias", 0, "Steering bias in radians (keep-right rule)")
	cone := flag.Float64("cone", 30, "Max steering deviation from heading, degrees")
	align := flag.Float64("align", -1, "Target heading (degrees) for the final alignment phase; <0 disables")
	rainbow := flag.Bool("rainbow", true, "Paint the fleet with per-bot hues before the run")

	flag.Parse()

	client := registry.NewClient(*host)

	client.OnNotification(func(notification registry.Notification) {
		utils.Debug("swarm-pilot", "registry push: "+notification.Cmd)
	})

	// Command dispatch works without the status socket; only push
	// notifications need it.
	if err := client.Connect(); err != nil {
		utils.WarnWith(err)
	} else {
		defer client.Close()
	}

	var policy nav.GoalPolicy
	switch *policyName {
	case "swap":
		policy = nav.SwapPolicy{}
	case "row":
		policy = nav.RowPolicy{
			Anchor:  vector.MakeVector2(*anchorX, *anchorY),
			Spacing: *spacing,
		}
	default:
		log.Fatalln("unknown goal policy:", *policyName)
	}

	config := pilot.Config{
		TickPeriod:        *tick,
		BotRadius:         *botRadius,
		WaypointThreshold: *threshold,
		StepScale:         *stepScale,
		Planner: nav.PlannerConfig{
			MaxSpeed:     *maxSpeed,
			Threshold:    *threshold,
			MaxDeviation: number.DegreeToRadian(*cone),
			Bias:         *bias,
		},
		Orca: nav.OrcaParams{TimeHorizon: *horizon},
	}

	if *rainbow {
		if err := pilot.RainbowFleet(client); err != nil {
			utils.WarnWith(err)
		}
	}

	run := pilot.NewConvergence(client, policy, config)

	go func() {
		<-common.SignalHandler()
		utils.Debug("sighandler", "RECEIVED SHUTDOWN SIGNAL; closing.")
		run.Stop()
	}()

	status, err := run.Run()
	if err != nil {
		utils.FailWith(err)
	}

	log.Println("Convergence finished:", status)

	if status == pilot.StatusConverged && *align >= 0 {
		alignment := pilot.NewHeadingAlignment(client, *align, 10)
		alignment.TickPeriod = *tick

		go func() {
			<-common.SignalHandler()
			alignment.Stop()
		}()

		status, err := alignment.Run()
		if err != nil {
			utils.FailWith(err)
		}

		log.Println("Heading alignment finished:", status)
	}
}

func defaultEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
