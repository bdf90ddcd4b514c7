package pilot

import (
	"github.com/dotswarm/dotswarm/common/types"
)

// FleetRegistry is the collaborator that owns bot liveness and the radio
// link. The pilot only ever reads snapshots from it and hands it fully-built
// commands; transport retries and liveness detection live on its side.
type FleetRegistry interface {
	FetchActiveBots() ([]types.BotState, error)
	SendWaypoints(address string, command types.WaypointCommand) error
	SendMoveRaw(address string, command types.MoveRawCommand) error
	SendLedColor(address string, command types.RgbLedCommand) error
}
