package registryserver

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/dotswarm/dotswarm/common/types"
	"github.com/dotswarm/dotswarm/common/utils"
)

const defaultHistoryLimit = 100

// FleetService is the fleet registry: it owns the authoritative bot state
// map, serves the controller REST API and status websocket, and encodes
// outbound commands for the radio gateway.
type FleetService struct {
	addr         string
	fleet        *types.FleetMap
	gateway      RadioGateway
	historyLimit int
	watchers     *watcherMap
	server       *http.Server
}

func NewFleetService(addr string, gateway RadioGateway) *FleetService {
	return &FleetService{
		addr:         addr,
		fleet:        fleetMapOrNew(nil),
		gateway:      gateway,
		historyLimit: defaultHistoryLimit,
		watchers:     newWatcherMap(),
	}
}

func fleetMapOrNew(fleet *types.FleetMap) *types.FleetMap {
	if fleet == nil {
		return types.NewFleetMap()
	}
	return fleet
}

// RegisterBot adds or replaces a bot in the registry; used at bootstrap
// from the fleet layout file and by the position ingest endpoint for bots
// appearing at runtime.
func (svc *FleetService) RegisterBot(bot types.BotState) {
	svc.fleet.Set(bot.Address, &bot)
}

func (svc *FleetService) Fleet() *types.FleetMap {
	return svc.fleet
}

func (svc *FleetService) Router() *mux.Router {
	router := mux.NewRouter()
	logger := os.Stdout

	router.Handle("/controller/dotbots", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleListBots),
	)).Methods("GET")

	router.Handle("/controller/dotbots/compute_orca_velocity", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleComputeOrcaVelocity),
	)).Methods("PUT")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleGetBot),
	)).Methods("GET")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}/positions", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleClearHistory),
	)).Methods("DELETE")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}/position", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleIngestPosition),
	)).Methods("PUT")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}/{application}/waypoints", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleWaypoints),
	)).Methods("PUT")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}/{application}/move_raw", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleMoveRaw),
	)).Methods("PUT")

	router.Handle("/controller/dotbots/{address:[A-F0-9]+}/{application}/rgb_led", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(svc.handleRgbLed),
	)).Methods("PUT")

	router.Handle("/controller/ws/status", http.HandlerFunc(svc.handleStatusWebsocket)).Methods("GET")

	return router
}

func (svc *FleetService) ListenAndServe() error {
	svc.server = &http.Server{
		Addr:    svc.addr,
		Handler: svc.Router(),
	}

	log.Println("Registry listening on " + svc.addr)

	return svc.server.ListenAndServe()
}

func (svc *FleetService) Shutdown() {
	if svc.server != nil {
		svc.server.Close()
	}
	svc.watchers.closeAll()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "marshal failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (svc *FleetService) handleListBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, svc.fleet.Snapshot())
}

func (svc *FleetService) handleGetBot(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	bot := svc.fleet.Get(address)
	if bot == nil {
		http.Error(w, "No matching dotbot found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, bot)
}

func (svc *FleetService) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	if !svc.fleet.Update(address, func(bot *types.BotState) {
		bot.PositionHistory = nil
	}) {
		http.Error(w, "No matching dotbot found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type positionIngest struct {
	types.Position
	Direction *float64 `json:"direction,omitempty"`
}

// handleIngestPosition is the uplink: the gateway (or a simulator) reports
// a fresh position sample and heading for one bot. History is bounded; the
// oldest samples fall off.
func (svc *FleetService) handleIngestPosition(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var ingest positionIngest
	if err := json.NewDecoder(r.Body).Decode(&ingest); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if bot := svc.fleet.Get(address); bot == nil {
		svc.RegisterBot(types.BotState{Address: address, Status: types.StatusActive})
		utils.Debug("registry", "bot "+address+" appeared")
	}

	svc.fleet.Update(address, func(bot *types.BotState) {
		position := ingest.Position
		bot.Position = &position
		bot.Status = types.StatusActive
		if ingest.Direction != nil {
			bot.Direction = ingest.Direction
		}

		bot.PositionHistory = append(bot.PositionHistory, position)
		if len(bot.PositionHistory) > svc.historyLimit {
			bot.PositionHistory = bot.PositionHistory[len(bot.PositionHistory)-svc.historyLimit:]
		}
	})

	svc.notifyWatchers(Notification{Cmd: "reload"})

	w.WriteHeader(http.StatusOK)
}

func (svc *FleetService) handleWaypoints(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var command types.WaypointCommand
	if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	bot := svc.fleet.Get(address)
	if bot == nil {
		http.Error(w, "No matching dotbot found", http.StatusNotFound)
		return
	}

	frame, err := EncodeWaypointFrame(bot.Application, command)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := svc.gateway.SendFrame(address, frame); err != nil {
		http.Error(w, "gateway send failed", http.StatusBadGateway)
		return
	}

	svc.notifyWatchers(Notification{Cmd: "reload"})

	w.WriteHeader(http.StatusOK)
}

func (svc *FleetService) handleMoveRaw(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var command types.MoveRawCommand
	if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if svc.fleet.Get(address) == nil {
		http.Error(w, "No matching dotbot found", http.StatusNotFound)
		return
	}

	if err := svc.gateway.SendFrame(address, EncodeMoveRawFrame(command)); err != nil {
		http.Error(w, "gateway send failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (svc *FleetService) handleRgbLed(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var command types.RgbLedCommand
	if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !svc.fleet.Update(address, func(bot *types.BotState) {
		cmd := command
		bot.RgbLed = &cmd
	}) {
		http.Error(w, "No matching dotbot found", http.StatusNotFound)
		return
	}

	if err := svc.gateway.SendFrame(address, EncodeRgbLedFrame(command)); err != nil {
		http.Error(w, "gateway send failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
}
