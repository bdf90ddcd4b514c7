package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
)

// Client talks to the fleet registry service: REST for snapshots and
// commands, an optional websocket for push notifications. It implements
// pilot.FleetRegistry.
type Client struct {
	baseurl string
	wsurl   string
	http    *http.Client

	conn   *websocket.Conn
	connmu sync.Mutex

	// applications remembers the positioning backend of each bot seen in a
	// snapshot, so command URLs can carry the right application tag without
	// refetching.
	applications   map[string]types.ApplicationType
	applicationsmu sync.RWMutex

	notifications []NotificationCallback
}

// Notification is a push message from the registry's status websocket.
type Notification struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data"`
}

type NotificationCallback func(notification Notification)

func NewClient(host string) *Client {
	return &Client{
		baseurl:      "http://" + host,
		wsurl:        "ws://" + host + "/controller/ws/status",
		http:         &http.Client{Timeout: 10 * time.Second},
		applications: make(map[string]types.ApplicationType),
	}
}

// FetchActiveBots returns the bots the registry currently considers alive.
func (client *Client) FetchActiveBots() ([]types.BotState, error) {
	res, err := client.http.Get(client.baseurl + "/controller/dotbots")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.New("registry returned status " + res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var bots []types.BotState
	if err := json.Unmarshal(body, &bots); err != nil {
		return nil, err
	}

	active := make([]types.BotState, 0, len(bots))

	client.applicationsmu.Lock()
	for _, bot := range bots {
		client.applications[bot.Address] = bot.Application
		if bot.Status == types.StatusActive {
			active = append(active, bot)
		}
	}
	client.applicationsmu.Unlock()

	return active, nil
}

func (client *Client) applicationOf(address string) types.ApplicationType {
	client.applicationsmu.RLock()
	application := client.applications[address]
	client.applicationsmu.RUnlock()

	return application
}

func (client *Client) put(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, client.baseurl+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return errors.New("registry returned status " + res.Status + " for " + path)
	}

	return nil
}

func (client *Client) SendWaypoints(address string, command types.WaypointCommand) error {
	application := client.applicationOf(address)
	return client.put("/controller/dotbots/"+address+"/"+application.String()+"/waypoints", command)
}

func (client *Client) SendMoveRaw(address string, command types.MoveRawCommand) error {
	application := client.applicationOf(address)
	return client.put("/controller/dotbots/"+address+"/"+application.String()+"/move_raw", command)
}

func (client *Client) SendLedColor(address string, command types.RgbLedCommand) error {
	application := client.applicationOf(address)
	return client.put("/controller/dotbots/"+address+"/"+application.String()+"/rgb_led", command)
}

// Connect opens the status websocket and starts the listen loop. Commands
// work without it; only push notifications need the socket.
func (client *Client) Connect() error {
	if !client.connect() {
		return errors.New("cannot connect to registry websocket " + client.wsurl)
	}

	go client.waitAndListen()

	return nil
}

func (client *Client) connect() bool {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.Dial(client.wsurl, http.Header{})
	if err != nil {
		return false
	}

	client.connmu.Lock()
	client.conn = conn
	client.connmu.Unlock()

	return true
}

func (client *Client) handleUnexpectedClose() {
	utils.Debug("registry-client", "Unexpected close")

	f := func() error {
		utils.Debug("registry-client", "Try to reconnect")
		if client.connect() {
			utils.Debug("registry-client", "Reconnected")
			return nil
		}

		return errors.New("connection failed")
	}

	backoff.Retry(f, backoff.NewExponentialBackOff())
}

func (client *Client) waitAndListen() {
	for {
		client.connmu.Lock()
		conn := client.conn
		client.connmu.Unlock()

		_, rawData, err := conn.ReadMessage()

		if websocket.IsUnexpectedCloseError(err) {
			client.handleUnexpectedClose()
			continue
		}

		if err != nil {
			utils.Debug("registry-client", "websocket read: "+err.Error())
			return
		}

		var notification Notification
		if err := json.Unmarshal(rawData, &notification); err != nil {
			utils.Debug("registry-client", "invalid notification: "+string(rawData))
			continue
		}

		for _, callback := range client.notifications {
			callback(notification)
		}
	}
}

// OnNotification registers a callback for status pushes; register before
// Connect, the callback list is not guarded afterwards.
func (client *Client) OnNotification(callback NotificationCallback) {
	client.notifications = append(client.notifications, callback)
}

func (client *Client) Close() error {
	client.connmu.Lock()
	defer client.connmu.Unlock()

	if client.conn == nil {
		return nil
	}

	return client.conn.Close()
}
