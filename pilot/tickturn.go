package pilot

import (
	"strconv"

	uuid "github.com/satori/go.uuid"
)

// Tickturn identifies one iteration of a control loop; the uuid ties log
// lines and outbound command batches of the same tick together.
type Tickturn struct {
	seq uint32
	id  uuid.UUID
}

func (turn Tickturn) String() string {
	return "<Tickturn(" + strconv.Itoa(int(turn.seq)) + ")>"
}

func (turn Tickturn) Next() Tickturn {
	return Tickturn{
		seq: turn.seq + 1,
		id:  uuid.NewV4(),
	}
}

func (turn Tickturn) GetSeq() uint32 {
	return turn.seq
}
