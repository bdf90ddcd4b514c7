package registryserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotswarm/dotswarm/common/types"
)

type recordingGateway struct {
	mu     sync.Mutex
	frames map[string][][]byte
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{frames: make(map[string][][]byte)}
}

func (g *recordingGateway) SendFrame(address string, frame []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frames[address] = append(g.frames[address], frame)
	return nil
}

func (g *recordingGateway) sent(address string) [][]byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames[address]
}

func newTestService() (*FleetService, *recordingGateway) {
	gateway := newRecordingGateway()
	svc := NewFleetService(":0", gateway)

	direction := 90.0
	svc.RegisterBot(types.BotState{
		Address:     "ABCDEF01020304",
		Application: types.ApplicationDotBot,
		Status:      types.StatusActive,
		Position:    &types.Position{X: 0.1, Y: 0.2},
		Direction:   &direction,
	})

	return svc, gateway
}

func doRequest(t *testing.T, svc *FleetService, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	svc.Router().ServeHTTP(recorder, req)

	return recorder
}

func TestListBots(t *testing.T) {
	svc, _ := newTestService()

	recorder := doRequest(t, svc, "GET", "/controller/dotbots", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var bots []types.BotState
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bots))
	require.Len(t, bots, 1)
	assert.Equal(t, "ABCDEF01020304", bots[0].Address)
}

func TestGetBotNotFound(t *testing.T) {
	svc, _ := newTestService()

	recorder := doRequest(t, svc, "GET", "/controller/dotbots/DEADBEEF000000", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestIngestPositionAppendsBoundedHistory(t *testing.T) {
	svc, _ := newTestService()
	svc.historyLimit = 3

	for i := 0; i < 5; i++ {
		body := map[string]interface{}{"x": float64(i), "y": 0.0, "direction": 45.0}
		recorder := doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/position", body)
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	bot := svc.Fleet().Get("ABCDEF01020304")
	require.NotNil(t, bot)
	require.Len(t, bot.PositionHistory, 3)

	// Oldest samples fell off.
	assert.Equal(t, 2.0, bot.PositionHistory[0].X)
	assert.Equal(t, 4.0, bot.Position.X)
	assert.Equal(t, 45.0, *bot.Direction)
}

func TestIngestPositionRegistersUnknownBot(t *testing.T) {
	svc, _ := newTestService()

	body := map[string]interface{}{"x": 1.0, "y": 1.0}
	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/AA00000000000001/position", body)
	require.Equal(t, http.StatusOK, recorder.Code)

	bot := svc.Fleet().Get("AA00000000000001")
	require.NotNil(t, bot)
	assert.Equal(t, types.StatusActive, bot.Status)
}

func TestWaypointsEncodeAndForwardToGateway(t *testing.T) {
	svc, gateway := newTestService()

	command := types.WaypointCommand{
		Threshold: 30,
		Waypoints: []types.Position{{X: 0.5, Y: 0.5}},
	}

	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/dotbot/waypoints", command)
	require.Equal(t, http.StatusOK, recorder.Code)

	frames := gateway.sent("ABCDEF01020304")
	require.Len(t, frames, 1)
	assert.Equal(t, byte(0x02), frames[0][0])
	assert.Equal(t, byte(30), frames[0][1])
}

func TestWaypointsRejectEmptyCommand(t *testing.T) {
	svc, gateway := newTestService()

	command := types.WaypointCommand{Threshold: 30}
	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/dotbot/waypoints", command)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, gateway.sent("ABCDEF01020304"))
}

func TestRgbLedStoresColorAndSendsFrame(t *testing.T) {
	svc, gateway := newTestService()

	command := types.RgbLedCommand{Red: 10, Green: 20, Blue: 30}
	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/dotbot/rgb_led", command)
	require.Equal(t, http.StatusOK, recorder.Code)

	bot := svc.Fleet().Get("ABCDEF01020304")
	require.NotNil(t, bot.RgbLed)
	assert.Equal(t, uint8(20), bot.RgbLed.Green)

	frames := gateway.sent("ABCDEF01020304")
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x01, 10, 20, 30}, frames[0])
}

func TestClearHistory(t *testing.T) {
	svc, _ := newTestService()

	body := map[string]interface{}{"x": 1.0, "y": 1.0}
	doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/position", body)

	recorder := doRequest(t, svc, "DELETE", "/controller/dotbots/ABCDEF01020304/positions", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	bot := svc.Fleet().Get("ABCDEF01020304")
	assert.Empty(t, bot.PositionHistory)
}

func TestComputeOrcaVelocityEndpoint(t *testing.T) {
	svc, _ := newTestService()

	req := map[string]interface{}{
		"agent": map[string]interface{}{
			"id":                 "A",
			"position":           map[string]float64{"x": 0, "y": 0},
			"velocity":           map[string]float64{"x": 0, "y": 0},
			"radius":             0.1,
			"max_speed":          0.5,
			"preferred_velocity": map[string]float64{"x": 0.2, "y": 0},
		},
		"neighbors": []interface{}{},
		"params":    map[string]float64{"time_horizon": 0.5},
	}

	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/compute_orca_velocity", req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.InDelta(t, 0.2, result.X, 1e-9)
	assert.InDelta(t, 0.0, result.Y, 1e-9)
}

func TestComputeOrcaVelocityRejectsBadHorizon(t *testing.T) {
	svc, _ := newTestService()

	req := map[string]interface{}{
		"agent": map[string]interface{}{
			"id":                 "A",
			"position":           map[string]float64{"x": 0, "y": 0},
			"velocity":           map[string]float64{"x": 0, "y": 0},
			"radius":             0.1,
			"max_speed":          0.5,
			"preferred_velocity": map[string]float64{"x": 0.2, "y": 0},
		},
		"params": map[string]float64{"time_horizon": 0},
	}

	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/compute_orca_velocity", req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
