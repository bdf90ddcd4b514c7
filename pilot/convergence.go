package pilot

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ttacon/chalk"
	"golang.org/x/sync/errgroup"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/common/utils/vector"
	"github.com/dotswarm/dotswarm/pilot/nav"
)

type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "Converged"
	case StatusCancelled:
		return "Cancelled"
	}

	return "Running"
}

// Config tunes one convergence run. Zero values fall back to the defaults
// measured on the physical fleet.
type Config struct {
	TickPeriod time.Duration

	// BotRadius is the physical collision radius of one bot.
	BotRadius float64

	// WaypointThreshold is the arrival threshold forwarded on every emitted
	// waypoint command, in firmware millimeters.
	WaypointThreshold float64

	// StepScale shrinks the solved velocity before it becomes a waypoint
	// step; crowded arenas run smoother with steps well inside the solver's
	// time horizon.
	StepScale float64

	// NeighborCutoff / MaxNeighbors bound the constraint set per agent;
	// zero means every other agent is a neighbor.
	NeighborCutoff float64
	MaxNeighbors   int

	Planner nav.PlannerConfig
	Orca    nav.OrcaParams
}

const (
	defaultTickPeriod        = 100 * time.Millisecond
	defaultBotRadius         = 0.04
	defaultWaypointThreshold = 30
)

func (cfg Config) withDefaults() Config {
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = defaultTickPeriod
	}

	if cfg.BotRadius == 0 {
		cfg.BotRadius = defaultBotRadius
	}

	if cfg.WaypointThreshold == 0 {
		cfg.WaypointThreshold = defaultWaypointThreshold
	}

	if cfg.StepScale == 0 {
		cfg.StepScale = 1.0
	}

	if cfg.Orca.TimeHorizon == 0 {
		cfg.Orca.TimeHorizon = cfg.TickPeriod.Seconds()
	}

	return cfg
}

// Convergence drives every active bot toward its assigned goal, one
// sense-plan-avoid-command tick at a time, until the whole fleet has
// arrived or the run is stopped.
//
// One run owns its goal mapping; ticks of the same run never overlap.
// Within a tick the per-agent solves are pure computations over the
// immutable snapshot and run in parallel.
type Convergence struct {
	registry FleetRegistry
	policy   nav.GoalPolicy
	config   Config

	stopticking chan struct{}
	stoponce    sync.Once

	currentturn Tickturn
}

func NewConvergence(registry FleetRegistry, policy nav.GoalPolicy, config Config) *Convergence {
	return &Convergence{
		registry:    registry,
		policy:      policy,
		config:      config.withDefaults(),
		stopticking: make(chan struct{}),
	}
}

// Stop cancels the run; the loop notices at the top of the next tick or at
// the sleep boundary, whichever comes first. A tick's command batch is
// never split by cancellation.
func (c *Convergence) Stop() {
	c.stoponce.Do(func() {
		close(c.stopticking)
	})
}

type outboundWaypoint struct {
	address string
	command types.WaypointCommand
}

// Run executes the convergence loop to a terminal status. A goal policy
// failure (e.g. swap on an odd fleet) aborts before any command is issued.
func (c *Convergence) Run() (Status, error) {
	cfg := c.config

	bots, err := c.registry.FetchActiveBots()
	if err != nil {
		return StatusCancelled, err
	}

	goals, err := c.policy.Assign(bots)
	if err != nil {
		return StatusCancelled, err
	}

	ticksPerLog := int(time.Second / cfg.TickPeriod)
	if ticksPerLog < 1 {
		ticksPerLog = 1
	}

	for {
		select {
		case <-c.stopticking:
			return StatusCancelled, nil
		default:
		}

		c.currentturn = c.currentturn.Next()
		turn := c.currentturn

		if int(turn.GetSeq())%ticksPerLog == 0 {
			fmt.Print(chalk.Yellow)
			log.Println("######## Tick #####", turn, chalk.Reset)
		}

		bots, err := c.registry.FetchActiveBots()
		if err != nil {
			// Transient registry failure: skip this tick, keep the run.
			utils.Debug("pilot", "fleet snapshot failed: "+err.Error())
			if cancelled := c.sleepTick(cfg.TickPeriod); cancelled {
				return StatusCancelled, nil
			}
			continue
		}

		agents := c.buildAgents(bots, goals)

		if allConverged(agents) {
			fmt.Print(chalk.Green)
			log.Println("Fleet converged after", turn.GetSeq(), "ticks", chalk.Reset)
			return StatusConverged, nil
		}

		index := nav.BuildNeighborIndex(agents)
		commands := make([]outboundWaypoint, len(agents))

		var solve errgroup.Group
		for i := range agents {
			i := i
			agent := agents[i]

			solve.Go(func() error {
				neighbors := index.Neighbors(agent, cfg.NeighborCutoff, cfg.MaxNeighbors)
				step := nav.Solve(agent, neighbors, cfg.Orca).MultScalar(cfg.StepScale)

				// Never overshoot: an avoidance detour may be longer than
				// what remains to the goal.
				if goal, ok := goals[agent.ID]; ok {
					distToGoal := agent.Position.DistanceTo(goal)
					if stepLen := step.Mag(); stepLen > distToGoal && stepLen > 0 {
						step = step.MultScalar(distToGoal / stepLen)
					}
				}

				target := agent.Position.Add(step)
				commands[i] = outboundWaypoint{
					address: agent.ID,
					command: types.WaypointCommand{
						Threshold: cfg.WaypointThreshold,
						Waypoints: []types.Position{types.MakePosition(target)},
					},
				}

				return nil
			})
		}

		solve.Wait()

		// The whole batch is dispatched before the tick ends; delivery to
		// any individual bot is the registry's concern.
		var dispatch errgroup.Group
		for _, out := range commands {
			out := out
			dispatch.Go(func() error {
				return c.registry.SendWaypoints(out.address, out.command)
			})
		}

		if err := dispatch.Wait(); err != nil {
			utils.Debug("pilot", "waypoint dispatch: "+err.Error())
		}

		if cancelled := c.sleepTick(cfg.TickPeriod); cancelled {
			return StatusCancelled, nil
		}
	}
}

func (c *Convergence) sleepTick(period time.Duration) bool {
	select {
	case <-c.stopticking:
		return true
	case <-time.After(period):
		return false
	}
}

// buildAgents turns the fleet snapshot into this tick's agent set. Bots
// with no position yet, or with non-finite state, are excluded from the
// tick — never aborting it — and picked up again next tick.
func (c *Convergence) buildAgents(bots []types.BotState, goals nav.GoalMapping) []nav.Agent {
	cfg := c.config
	agents := make([]nav.Agent, 0, len(bots))

	for _, bot := range bots {
		if bot.Position == nil {
			utils.Debug("pilot", "bot "+bot.Address+" has no position; excluded this tick")
			continue
		}

		heading := 0.0
		if bot.Direction != nil {
			heading = *bot.Direction
		}

		position := bot.Position.ToVector2()

		var goal *vector.Vector2
		if g, ok := goals[bot.Address]; ok {
			gg := g
			goal = &gg
		}

		agent := nav.Agent{
			ID:                bot.Address,
			Position:          position,
			Velocity:          nav.EstimateVelocity(bot.PositionHistory, cfg.TickPeriod.Seconds()),
			Radius:            cfg.BotRadius,
			MaxSpeed:          cfg.Planner.MaxSpeed,
			PreferredVelocity: cfg.Planner.Plan(position, heading, goal),
			Direction:         heading,
		}

		if err := agent.Validate(); err != nil {
			fmt.Print(chalk.Red)
			log.Println("ERROR: excluding bot "+bot.Address+" this tick:", err, chalk.Reset)
			continue
		}

		agents = append(agents, agent)
	}

	return agents
}

// Termination: every agent votes with a null preferred velocity, meaning
// goal reached (or no goal assigned).
func allConverged(agents []nav.Agent) bool {
	for _, agent := range agents {
		if !agent.PreferredVelocity.IsNull() {
			return false
		}
	}

	return true
}
