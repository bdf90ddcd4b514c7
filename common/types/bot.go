package types

import (
	"github.com/dotswarm/dotswarm/common/utils/vector"
)

// ApplicationType tags the positioning backend of a bot; it decides once per
// bot how waypoint payloads are encoded on the radio link (local fixed-point
// frame vs micro-degree GPS).
type ApplicationType int

const (
	ApplicationDotBot ApplicationType = iota
	ApplicationSailBot
)

func (a ApplicationType) String() string {
	if a == ApplicationSailBot {
		return "SailBot"
	}

	return "DotBot"
}

type BotStatus int

const (
	StatusActive BotStatus = iota
	StatusLost
	StatusDead
)

func (s BotStatus) String() string {
	switch s {
	case StatusLost:
		return "Lost"
	case StatusDead:
		return "Dead"
	}

	return "Active"
}

// Position is a point in the local positioning frame; Z is always 0 for
// planar navigation.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (p Position) ToVector2() vector.Vector2 {
	return vector.MakeVector2(p.X, p.Y)
}

func MakePosition(v vector.Vector2) Position {
	x, y := v.Get()
	return Position{X: x, Y: y}
}

// GPSPosition is a geodetic point, used by the SailBot application only.
type GPSPosition struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// BotState is the registry's view of one bot. The pilot consumes it
// read-only, as an immutable per-tick snapshot.
type BotState struct {
	Address         string          `json:"address"`
	Application     ApplicationType `json:"application"`
	Status          BotStatus       `json:"status"`
	Position        *Position       `json:"position,omitempty"`
	GPSPosition     *GPSPosition    `json:"gps_position,omitempty"`
	Direction       *float64        `json:"direction,omitempty"`
	PositionHistory []Position      `json:"position_history,omitempty"`
	RgbLed          *RgbLedCommand  `json:"rgb_led,omitempty"`
}

// WaypointCommand is a bounded list of points with an arrival threshold.
// The navigation loop always emits exactly one point per tick.
type WaypointCommand struct {
	Threshold float64    `json:"threshold"`
	Waypoints []Position `json:"waypoints"`
}

// MoveRawCommand drives the two motors directly, bypassing waypoint
// navigation; used by the heading-alignment phase.
type MoveRawCommand struct {
	LeftX  int8 `json:"left_x"`
	LeftY  int8 `json:"left_y"`
	RightX int8 `json:"right_x"`
	RightY int8 `json:"right_y"`
}

type RgbLedCommand struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}
