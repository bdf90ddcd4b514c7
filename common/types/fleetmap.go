package types

import "sync"

// FleetMap is the registry's concurrent map of bot states, keyed by radio
// address.
type FleetMap struct {
	data map[string]*BotState
	lock *sync.RWMutex
}

func NewFleetMap() *FleetMap {
	return &FleetMap{
		data: make(map[string]*BotState),
		lock: &sync.RWMutex{},
	}
}

func (fmap *FleetMap) Get(address string) *BotState {
	fmap.lock.RLock()
	res := fmap.data[address]
	fmap.lock.RUnlock()

	return res
}

func (fmap *FleetMap) Set(address string, bot *BotState) {
	fmap.lock.Lock()
	fmap.data[address] = bot
	fmap.lock.Unlock()
}

func (fmap *FleetMap) Remove(address string) {
	fmap.lock.Lock()
	delete(fmap.data, address)
	fmap.lock.Unlock()
}

func (fmap *FleetMap) Size() int {
	fmap.lock.RLock()
	res := len(fmap.data)
	fmap.lock.RUnlock()

	return res
}

// Update mutates the state of one bot under the write lock; the callback
// must not retain the pointer.
func (fmap *FleetMap) Update(address string, mutate func(bot *BotState)) bool {
	fmap.lock.Lock()
	bot, present := fmap.data[address]
	if present {
		mutate(bot)
	}
	fmap.lock.Unlock()

	return present
}

// Snapshot returns deep copies of every bot state; history slices are
// cloned so the caller can read them without holding the lock.
func (fmap *FleetMap) Snapshot() []BotState {
	fmap.lock.RLock()
	res := make([]BotState, 0, len(fmap.data))
	for _, bot := range fmap.data {
		clone := *bot
		clone.PositionHistory = append([]Position(nil), bot.PositionHistory...)
		res = append(res, clone)
	}
	fmap.lock.RUnlock()

	return res
}
