package registryserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	notify "github.com/bitly/go-notify"
	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"

	"github.com/dotswarm/dotswarm/common/utils"
)

// Notification is pushed to every connected status watcher whenever the
// fleet state changes.
type Notification struct {
	Cmd  string      `json:"cmd"`
	Data interface{} `json:"data,omitempty"`
}

type watcher struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *watcher) send(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.conn.WriteMessage(websocket.TextMessage, data)
}

type watcherMap struct {
	watchers map[uuid.UUID]*watcher
	mu       sync.RWMutex
}

func newWatcherMap() *watcherMap {
	return &watcherMap{
		watchers: make(map[uuid.UUID]*watcher),
	}
}

func (wm *watcherMap) add(w *watcher) {
	wm.mu.Lock()
	wm.watchers[w.id] = w
	wm.mu.Unlock()
}

func (wm *watcherMap) remove(id uuid.UUID) {
	wm.mu.Lock()
	delete(wm.watchers, id)
	wm.mu.Unlock()
}

func (wm *watcherMap) broadcast(data []byte) {
	wm.mu.RLock()
	targets := make([]*watcher, 0, len(wm.watchers))
	for _, w := range wm.watchers {
		targets = append(targets, w)
	}
	wm.mu.RUnlock()

	for _, w := range targets {
		if err := w.send(data); err != nil {
			utils.Debug("registry", "watcher "+w.id.String()+" dropped: "+err.Error())
			wm.remove(w.id)
			w.conn.Close()
		}
	}
}

func (wm *watcherMap) closeAll() {
	wm.mu.Lock()
	for id, w := range wm.watchers {
		w.conn.Close()
		delete(wm.watchers, id)
	}
	wm.mu.Unlock()
}

// notifyWatchers decouples state mutations from websocket writes through
// the process-local notify bus.
func (svc *FleetService) notifyWatchers(notification Notification) {
	notify.PostTimeout("fleet:update", notification, 0)

	data, err := json.Marshal(notification)
	if err != nil {
		return
	}

	svc.watchers.broadcast(data)
}

// SubscribeUpdates exposes the internal update stream to in-process
// consumers (e.g. a dashboard or recorder embedded in the same binary).
func (svc *FleetService) SubscribeUpdates() chan interface{} {
	stream := make(chan interface{}, 16)
	notify.Start("fleet:update", stream)
	return stream
}

func (svc *FleetService) handleStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}

	wtc := &watcher{id: uuid.NewV4(), conn: c}
	svc.watchers.add(wtc)

	defer func() {
		svc.watchers.remove(wtc.id)
		c.Close()
	}()

	// Watchers are write-only; the read loop only detects disconnects.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
