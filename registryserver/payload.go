package registryserver

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/dotswarm/dotswarm/common/types"
)

// Radio payload types, one byte on the wire.
const (
	payloadTypeCmdMoveRaw   byte = 0x00
	payloadTypeCmdRgbLed    byte = 0x01
	payloadTypeLH2Waypoints byte = 0x02
	payloadTypeGPSWaypoints byte = 0x03
)

// microUnit is the fixed-point scale of the radio protocol: positions and
// degrees travel as int32 millionths.
const microUnit = 1e6

// EncodeWaypointFrame packs a waypoint command into its little-endian radio
// frame. The bot's application tag picks the encoding: local-frame bots get
// micro-unit LH2 triplets, GPS bots get micro-degree pairs where Position.X
// carries longitude and Position.Y latitude.
func EncodeWaypointFrame(application types.ApplicationType, command types.WaypointCommand) ([]byte, error) {
	if len(command.Waypoints) == 0 {
		return nil, errors.New("waypoint command without waypoints")
	}

	buf := &bytes.Buffer{}

	switch application {
	case types.ApplicationSailBot:
		buf.WriteByte(payloadTypeGPSWaypoints)
		buf.WriteByte(byte(command.Threshold))
		buf.WriteByte(byte(len(command.Waypoints)))

		for _, waypoint := range command.Waypoints {
			binary.Write(buf, binary.LittleEndian, int32(waypoint.Y*microUnit))
			binary.Write(buf, binary.LittleEndian, int32(waypoint.X*microUnit))
		}
	default:
		buf.WriteByte(payloadTypeLH2Waypoints)
		buf.WriteByte(byte(command.Threshold))
		buf.WriteByte(byte(len(command.Waypoints)))

		for _, waypoint := range command.Waypoints {
			binary.Write(buf, binary.LittleEndian, int32(waypoint.X*microUnit))
			binary.Write(buf, binary.LittleEndian, int32(waypoint.Y*microUnit))
			binary.Write(buf, binary.LittleEndian, int32(waypoint.Z*microUnit))
		}
	}

	return buf.Bytes(), nil
}

func EncodeMoveRawFrame(command types.MoveRawCommand) []byte {
	return []byte{
		payloadTypeCmdMoveRaw,
		byte(command.LeftX),
		byte(command.LeftY),
		byte(command.RightX),
		byte(command.RightY),
	}
}

func EncodeRgbLedFrame(command types.RgbLedCommand) []byte {
	return []byte{
		payloadTypeCmdRgbLed,
		command.Red,
		command.Green,
		command.Blue,
	}
}
