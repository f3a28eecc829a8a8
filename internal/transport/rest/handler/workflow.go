package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"futurecustomer/internal/model"
	"futurecustomer/internal/service"
	"futurecustomer/internal/transport/rest/middleware"
	"futurecustomer/internal/workflow"
)

// maxUploadBytes bounds a question upload
const maxUploadBytes = 1 << 20

// WorkflowHandler handles workflow action endpoints
type WorkflowHandler struct {
	workflowSvc *service.WorkflowService
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(workflowSvc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowSvc: workflowSvc}
}

// CreateAgents handles POST /v1/session/agents
// @Summary Create the agent pool
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateAgentsRequest true "agent count 1-100"
// @Success 200 {object} workflow.Snapshot
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /session/agents [post]
func (h *WorkflowHandler) CreateAgents(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAgentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.workflowSvc.CreateAgents(r.Context(), middleware.GetSessionID(r.Context()), req.Count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UploadQuestions handles POST /v1/session/questions
// @Summary Upload a question CSV
// @Description Raw CSV body, or multipart form with a "file" field. One question per row, no header.
// @Tags workflow
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} workflow.Snapshot
// @Failure 422 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /session/questions [post]
func (h *WorkflowHandler) UploadQuestions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	raw, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error())
		return
	}

	snap, err := h.workflowSvc.UploadQuestions(r.Context(), middleware.GetSessionID(r.Context()), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SubmitScenario handles POST /v1/session/scenario
// @Summary Deploy a future scenario
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.ScenarioRequest true "scenario text, at least 5 characters"
// @Success 200 {object} workflow.Snapshot
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /session/scenario [post]
func (h *WorkflowHandler) SubmitScenario(w http.ResponseWriter, r *http.Request) {
	var req model.ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.workflowSvc.SubmitScenario(r.Context(), middleware.GetSessionID(r.Context()), req.Scenario)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Gates handles GET /v1/session/gates
// @Summary Gates for draft input
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param count query int false "draft agent count"
// @Param scenario query string false "draft scenario text"
// @Success 200 {object} workflow.Gates
// @Router /session/gates [get]
func (h *WorkflowHandler) Gates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	draft := workflow.Draft{Scenario: q.Get("scenario")}
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		draft.AgentCount = n
	}

	gates, err := h.workflowSvc.Gates(middleware.GetSessionID(r.Context()), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gates)
}

// Export handles GET /v1/session/export
// @Summary Download agent responses
// @Tags workflow
// @Produce application/zip
// @Security BearerAuth
// @Param source query string false "local (default) or backend"
// @Success 200 {file} file
// @Failure 409 {object} model.ErrorResponse
// @Router /session/export [get]
func (h *WorkflowHandler) Export(w http.ResponseWriter, r *http.Request) {
	source, err := service.ParseExportSource(r.URL.Query().Get("source"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dl, err := h.workflowSvc.Export(r.Context(), middleware.GetSessionID(r.Context()), source)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}

func readUpload(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer file.Close()
		b, err := io.ReadAll(file)
		return string(b), err
	}

	b, err := io.ReadAll(r.Body)
	return string(b), err
}
