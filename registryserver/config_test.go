package registryserver

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotswarm/dotswarm/common/types"
)

func TestLoadFleetConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")

	content := `dotbots:
  - address: AAAAAAAAAAAAAA01
    application: DotBot
    calibrated: true
    pos_x: 0.5
    pos_y: -0.5
    theta: 1.5707963
  - address: AAAAAAAAAAAAAA02
    application: SailBot
    calibrated: false
    pos_x: 4.35
    pos_y: 50.85
    theta: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFleetConfig(path)
	require.NoError(t, err)
	require.Len(t, config.Dotbots, 2)

	assert.Equal(t, "AAAAAAAAAAAAAA01", config.Dotbots[0].Address)
	assert.Equal(t, 0.5, config.Dotbots[0].PosX)
	assert.Equal(t, "SailBot", config.Dotbots[1].Application)
}

func TestLoadFleetConfigMissingFile(t *testing.T) {
	_, err := LoadFleetConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSeedRegistersBotsWithDegreesHeading(t *testing.T) {
	svc := NewFleetService(":0", &LogGateway{})

	config := &FleetConfig{Dotbots: []BotConfig{{
		Address: "AAAAAAAAAAAAAA01",
		PosX:    0.5,
		PosY:    0.25,
		Theta:   math.Pi / 2,
	}}}

	svc.Seed(config)

	bot := svc.Fleet().Get("AAAAAAAAAAAAAA01")
	require.NotNil(t, bot)
	assert.Equal(t, types.StatusActive, bot.Status)
	assert.Equal(t, 0.5, bot.Position.X)
	require.NotNil(t, bot.Direction)
	assert.InDelta(t, 90, *bot.Direction, 1e-9)
	require.Len(t, bot.PositionHistory, 1)
}

func TestGenerateCircleFleet(t *testing.T) {
	config := GenerateCircleFleet(4, 0.5, 0.5, 0.3)
	require.Len(t, config.Dotbots, 4)

	// First bot sits on the +x axis of the circle, facing outward.
	assert.InDelta(t, 0.8, config.Dotbots[0].PosX, 1e-9)
	assert.InDelta(t, 0.5, config.Dotbots[0].PosY, 1e-9)
	assert.InDelta(t, 0, config.Dotbots[0].Theta, 1e-9)

	// Third bot is diametrically opposite.
	assert.InDelta(t, 0.2, config.Dotbots[2].PosX, 1e-9)
	assert.InDelta(t, math.Pi, config.Dotbots[2].Theta, 1e-9)

	// Addresses are unique.
	seen := make(map[string]bool)
	for _, bot := range config.Dotbots {
		assert.False(t, seen[bot.Address])
		seen[bot.Address] = true
	}
}

func TestGenerateGridFleet(t *testing.T) {
	config := GenerateGridFleet(2, 3, 0.1, 0.2, 0.5)
	require.Len(t, config.Dotbots, 6)

	assert.Equal(t, 0.1, config.Dotbots[0].PosX)
	assert.Equal(t, 0.2, config.Dotbots[0].PosY)

	// Last bot: row 1, col 2.
	assert.InDelta(t, 1.1, config.Dotbots[5].PosX, 1e-9)
	assert.InDelta(t, 0.7, config.Dotbots[5].PosY, 1e-9)
}

func TestFleetConfigRoundTrip(t *testing.T) {
	config := GenerateCircleFleet(3, 0, 0, 1)

	data, err := config.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadFleetConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
