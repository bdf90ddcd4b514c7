package registryserver

import (
	"math"
	"os"

	bettererrors "github.com/xtuc/better-errors"
	"gopkg.in/yaml.v3"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils/number"
)

// FleetConfig is the YAML bootstrap file: the bots the registry should know
// about before the first position ingest, typically generated by
// swarm-genfleet.
type FleetConfig struct {
	Dotbots []BotConfig `yaml:"dotbots"`
}

type BotConfig struct {
	Address     string  `yaml:"address"`
	Application string  `yaml:"application"`
	Calibrated  bool    `yaml:"calibrated"`
	PosX        float64 `yaml:"pos_x"`
	PosY        float64 `yaml:"pos_y"`
	Theta       float64 `yaml:"theta"`
}

func LoadFleetConfig(path string) (*FleetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bettererrors.
			New("cannot read fleet config").
			SetContext("path", path).
			With(bettererrors.NewFromErr(err))
	}

	config := &FleetConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, bettererrors.
			New("invalid fleet config").
			SetContext("path", path).
			With(bettererrors.NewFromErr(err))
	}

	return config, nil
}

func (config *FleetConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(config)
}

// Seed registers every configured bot with its initial pose.
func (svc *FleetService) Seed(config *FleetConfig) {
	for _, botConfig := range config.Dotbots {
		application := types.ApplicationDotBot
		if botConfig.Application == types.ApplicationSailBot.String() {
			application = types.ApplicationSailBot
		}

		position := types.Position{X: botConfig.PosX, Y: botConfig.PosY}
		direction := number.RadianToDegree(botConfig.Theta)

		svc.RegisterBot(types.BotState{
			Address:         botConfig.Address,
			Application:     application,
			Status:          types.StatusActive,
			Position:        &position,
			Direction:       &direction,
			PositionHistory: []types.Position{position},
		})
	}
}

// GenerateCircleFleet lays n bots on a circle facing outward; the layouts
// mirror the bench arrangements used for avoidance trials.
func GenerateCircleFleet(n int, centerX float64, centerY float64, radius float64) *FleetConfig {
	config := &FleetConfig{}

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)

		config.Dotbots = append(config.Dotbots, BotConfig{
			Address:    genAddress(i),
			Calibrated: true,
			PosX:       centerX + radius*math.Cos(angle),
			PosY:       centerY + radius*math.Sin(angle),
			Theta:      angle,
		})
	}

	return config
}

// GenerateGridFleet lays bots on a rows×cols grid with the given spacing,
// all facing the same way.
func GenerateGridFleet(rows int, cols int, originX float64, originY float64, spacing float64) *FleetConfig {
	config := &FleetConfig{}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			config.Dotbots = append(config.Dotbots, BotConfig{
				Address:    genAddress(row*cols + col),
				Calibrated: true,
				PosX:       originX + float64(col)*spacing,
				PosY:       originY + float64(row)*spacing,
				Theta:      0,
			})
		}
	}

	return config
}

const addressPrefix = "AAAAAAAAAAAAAA"

var hexDigits = "0123456789ABCDEF"

func genAddress(i int) string {
	return addressPrefix + string(hexDigits[(i>>4)&0xF]) + string(hexDigits[i&0xF])
}
