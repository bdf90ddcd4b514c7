package registryserver

import (
	"encoding/hex"

	"github.com/dotswarm/dotswarm/common/utils"
)

// RadioGateway is the downlink to the bots: one encoded frame per command,
// single hop, fire-and-forget. Delivery guarantees live behind this
// interface, not in the registry.
type RadioGateway interface {
	SendFrame(address string, frame []byte) error
}

// LogGateway is a gateway stub for bench runs without radio hardware: it
// logs every frame instead of transmitting.
type LogGateway struct{}

func (LogGateway) SendFrame(address string, frame []byte) error {
	utils.Debug("gateway", "frame to "+address+": "+hex.EncodeToString(frame))
	return nil
}
