package registryserver

import (
	"encoding/json"
	"net/http"

	"github.com/dotswarm/dotswarm/common/utils/vector"
	"github.com/dotswarm/dotswarm/pilot/nav"
)

// Wire models for the diagnostic solver endpoint; the solver itself works
// on nav.Agent.
type vec2Model struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (m vec2Model) toVector2() vector.Vector2 {
	return vector.MakeVector2(m.X, m.Y)
}

type agentModel struct {
	ID                string    `json:"id"`
	Position          vec2Model `json:"position"`
	Velocity          vec2Model `json:"velocity"`
	Radius            float64   `json:"radius"`
	MaxSpeed          float64   `json:"max_speed"`
	PreferredVelocity vec2Model `json:"preferred_velocity"`
	Direction         float64   `json:"direction"`
}

func (m agentModel) toAgent() nav.Agent {
	return nav.Agent{
		ID:                m.ID,
		Position:          m.Position.toVector2(),
		Velocity:          m.Velocity.toVector2(),
		Radius:            m.Radius,
		MaxSpeed:          m.MaxSpeed,
		PreferredVelocity: m.PreferredVelocity.toVector2(),
		Direction:         m.Direction,
	}
}

type orcaRequest struct {
	Agent     agentModel   `json:"agent"`
	Neighbors []agentModel `json:"neighbors"`
	Params    struct {
		TimeHorizon float64 `json:"time_horizon"`
	} `json:"params"`
}

// handleComputeOrcaVelocity exposes the solver for debug tooling: one agent,
// its neighbors, one answer. No fleet state is touched.
func (svc *FleetService) handleComputeOrcaVelocity(w http.ResponseWriter, r *http.Request) {
	var req orcaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	agent := req.Agent.toAgent()
	if err := agent.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	neighbors := make([]nav.Agent, 0, len(req.Neighbors))
	for _, model := range req.Neighbors {
		neighbor := model.toAgent()
		if err := neighbor.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		neighbors = append(neighbors, neighbor)
	}

	if req.Params.TimeHorizon <= 0 {
		http.Error(w, "time_horizon must be > 0", http.StatusBadRequest)
		return
	}

	solved := nav.Solve(agent, neighbors, nav.OrcaParams{TimeHorizon: req.Params.TimeHorizon})

	x, y := solved.Get()
	writeJSON(w, http.StatusOK, vec2Model{X: x, Y: y})
}
