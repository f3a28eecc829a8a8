package rest

import (
	"log/slog"
	"net/http"

	"futurecustomer/internal/gateway"
	"futurecustomer/internal/metrics"
	"futurecustomer/internal/simulation"
	"futurecustomer/internal/transport/rest/handler"

	"github.com/gorilla/mux"
)

// SimulatorContainer holds the dependencies of the simulator backend
type SimulatorContainer struct {
	Simulator *simulation.Service
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewSimulatorRouter serves the backend paths the workflow gateway calls
func NewSimulatorRouter(c *SimulatorContainer) http.Handler {
	r := mux.NewRouter()
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	simHandler := handler.NewSimulatorHandler(c.Simulator)

	r.Use(requestLogger(logger))

	r.HandleFunc("/health", health).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	r.HandleFunc(gateway.PathAgents, simHandler.CreateAgents).Methods("GET")
	r.HandleFunc(gateway.PathQuestions, simHandler.ReceiveQuestions).Methods("POST")
	r.HandleFunc(gateway.PathScenario, simHandler.ReceiveScenario).Methods("POST")
	r.HandleFunc(gateway.PathExport, simHandler.DownloadResponses).Methods("POST")

	return r
}
