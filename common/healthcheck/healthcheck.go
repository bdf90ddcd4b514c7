package healthcheck

import (
	"encoding/json"
	"net/http"

	"github.com/dotswarm/dotswarm/common/utils"
)

type HealthCheckHandler func() (err error, ok bool)

type HealthCheckServer struct {
	checkers map[string]HealthCheckHandler
	port     string
}

type HealthCheck struct {
	Status bool
	Name   string
}

type HealthCheckHttpResponse struct {
	Checks     []HealthCheck
	StatusCode int
}

func NewHealthCheckServer(port string) *HealthCheckServer {
	return &HealthCheckServer{
		port:     port,
		checkers: make(map[string]HealthCheckHandler),
	}
}

func (server *HealthCheckServer) Register(name string, handler HealthCheckHandler) {
	server.checkers[name] = handler
}

func (server *HealthCheckServer) httpHandler(w http.ResponseWriter, r *http.Request) {
	res := HealthCheckHttpResponse{
		Checks:     make([]HealthCheck, 0),
		StatusCode: http.StatusOK,
	}

	for name, checker := range server.checkers {
		err, ok := checker()

		if err == nil {
			res.Checks = append(res.Checks, HealthCheck{
				Name:   name,
				Status: ok,
			})
		} else {
			res.StatusCode = http.StatusInternalServerError
		}
	}

	data, err := json.Marshal(res)
	utils.Check(err, "Failed to marshal health response")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	w.Write(data)
}

func (server *HealthCheckServer) Listen() {
	http.HandleFunc("/health", server.httpHandler)

	err := http.ListenAndServe(":"+server.port, nil)
	utils.Check(err, "Failed to listen on :"+server.port)
}

func (server *HealthCheckServer) Start() {
	go server.Listen()
}
