package registryserver

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotswarm/dotswarm/common/types"
)

func TestEncodeWaypointFrameLH2(t *testing.T) {
	command := types.WaypointCommand{
		Threshold: 30,
		Waypoints: []types.Position{
			{X: 0.5, Y: -0.25, Z: 0},
			{X: 1, Y: 2, Z: 3},
		},
	}

	frame, err := EncodeWaypointFrame(types.ApplicationDotBot, command)
	require.NoError(t, err)

	// Header: type, threshold, count. Body: 3 coordinates per waypoint.
	require.Len(t, frame, 3+2*12)
	assert.Equal(t, byte(0x02), frame[0])
	assert.Equal(t, byte(30), frame[1])
	assert.Equal(t, byte(2), frame[2])

	assert.Equal(t, int32(500000), int32(binary.LittleEndian.Uint32(frame[3:7])))
	assert.Equal(t, int32(-250000), int32(binary.LittleEndian.Uint32(frame[7:11])))
	assert.Equal(t, int32(0), int32(binary.LittleEndian.Uint32(frame[11:15])))
	assert.Equal(t, int32(3000000), int32(binary.LittleEndian.Uint32(frame[23:27])))
}

func TestEncodeWaypointFrameGPSSwapsLatitudeFirst(t *testing.T) {
	// X carries longitude, Y latitude; the radio frame wants latitude first.
	command := types.WaypointCommand{
		Threshold: 5,
		Waypoints: []types.Position{{X: 4.35, Y: 50.85}},
	}

	frame, err := EncodeWaypointFrame(types.ApplicationSailBot, command)
	require.NoError(t, err)

	require.Len(t, frame, 3+8)
	assert.Equal(t, byte(0x03), frame[0])
	assert.Equal(t, int32(50850000), int32(binary.LittleEndian.Uint32(frame[3:7])))
	assert.Equal(t, int32(4350000), int32(binary.LittleEndian.Uint32(frame[7:11])))
}

func TestEncodeWaypointFrameRejectsEmpty(t *testing.T) {
	_, err := EncodeWaypointFrame(types.ApplicationDotBot, types.WaypointCommand{Threshold: 30})
	assert.Error(t, err)
}

func TestEncodeMoveRawFrame(t *testing.T) {
	frame := EncodeMoveRawFrame(types.MoveRawCommand{LeftY: 50, RightY: -50})

	assert.Equal(t, []byte{0x00, 0, 50, 0, 0xCE}, frame)
}

func TestEncodeRgbLedFrame(t *testing.T) {
	frame := EncodeRgbLedFrame(types.RgbLedCommand{Red: 255, Green: 16, Blue: 1})

	assert.Equal(t, []byte{0x01, 255, 16, 1}, frame)
}
