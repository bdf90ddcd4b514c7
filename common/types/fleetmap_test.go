package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFleetMapSetGetRemove(t *testing.T) {
	fleet := NewFleetMap()

	fleet.Set("A", &BotState{Address: "A"})
	require.NotNil(t, fleet.Get("A"))
	assert.Equal(t, 1, fleet.Size())

	fleet.Remove("A")
	assert.Nil(t, fleet.Get("A"))
	assert.Equal(t, 0, fleet.Size())
}

func TestFleetMapUpdateMissingBot(t *testing.T) {
	fleet := NewFleetMap()

	assert.False(t, fleet.Update("nope", func(bot *BotState) {
		t.Fatal("mutate called for a missing bot")
	}))
}

func TestFleetMapSnapshotIsDeepCopy(t *testing.T) {
	fleet := NewFleetMap()
	fleet.Set("A", &BotState{
		Address:         "A",
		PositionHistory: []Position{{X: 1}},
	})

	snapshot := fleet.Snapshot()
	require.Len(t, snapshot, 1)

	// Mutating the snapshot must not leak back into the map.
	snapshot[0].PositionHistory[0].X = 99
	snapshot[0].Address = "B"

	bot := fleet.Get("A")
	assert.Equal(t, "A", bot.Address)
	assert.Equal(t, 1.0, bot.PositionHistory[0].X)
}
