package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"futurecustomer/internal/gateway"
	"futurecustomer/internal/simulation"
)

// SimulatorHandler serves the backend wire contract the workflow gateway talks to
type SimulatorHandler struct {
	sim *simulation.Service
}

// NewSimulatorHandler creates a new simulator handler
func NewSimulatorHandler(sim *simulation.Service) *SimulatorHandler {
	return &SimulatorHandler{sim: sim}
}

// CreateAgents handles GET /?agents=N
func (h *SimulatorHandler) CreateAgents(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(r.URL.Query().Get("agents"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "agents must be a number")
		return
	}

	agents, err := h.sim.CreateAgents(r.Context(), sessionHeader(r), count)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// ReceiveQuestions handles POST /receive_user_csv
func (h *SimulatorHandler) ReceiveQuestions(w http.ResponseWriter, r *http.Request) {
	var req gateway.QuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.sim.AnswerQuestions(r.Context(), sessionHeader(r), req.Questions)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReceiveScenario handles POST /receive_future_scenario
func (h *SimulatorHandler) ReceiveScenario(w http.ResponseWriter, r *http.Request) {
	var req gateway.ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ack, err := h.sim.ApplyScenario(r.Context(), sessionHeader(r), req.Scenario)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// DownloadResponses handles POST /download_agent_response_csv
func (h *SimulatorHandler) DownloadResponses(w http.ResponseWriter, r *http.Request) {
	var req gateway.QuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dl, err := h.sim.Export(r.Context(), sessionHeader(r), req.Questions)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}

func sessionHeader(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(gateway.SessionHeader)); id != "" {
		return id
	}
	return simulation.DefaultSession
}

func writeSimulationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrCountOutOfRange),
		errors.Is(err, simulation.ErrNoQuestions),
		errors.Is(err, simulation.ErrEmptyScenario),
		errors.Is(err, simulation.ErrQuestionsMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, simulation.ErrNoAgents),
		errors.Is(err, simulation.ErrNoResponses):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
