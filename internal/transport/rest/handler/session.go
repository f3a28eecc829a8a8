package handler

import (
	"net/http"

	"futurecustomer/internal/service"
	"futurecustomer/internal/transport/rest/middleware"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	workflowSvc *service.WorkflowService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(workflowSvc *service.WorkflowService) *SessionHandler {
	return &SessionHandler{workflowSvc: workflowSvc}
}

// Open handles POST /v1/sessions
// @Summary Open a workflow session
// @Tags session
// @Produce json
// @Success 201 {object} model.SessionResponse
// @Router /sessions [post]
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	resp, err := h.workflowSvc.OpenSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/session
// @Summary Current workflow state
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} workflow.Snapshot
// @Router /session [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workflowSvc.Snapshot(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Reset handles POST /v1/session/reset
// @Summary Reset the workflow
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} workflow.Snapshot
// @Router /session/reset [post]
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workflowSvc.Reset(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Close handles DELETE /v1/session
// @Summary End the session
// @Tags session
// @Security BearerAuth
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.workflowSvc.CloseSession(middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
