package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"futurecustomer/internal/csvupload"
	"futurecustomer/internal/gateway"
	"futurecustomer/internal/model"
	"futurecustomer/internal/service"
	"futurecustomer/internal/workflow"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeServiceError maps a service error to its status code
func writeServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	if gateway.IsGatewayError(err) {
		message = "simulation backend request failed"
	}
	writeJSON(w, status, model.ErrorResponse{Error: message, Code: service.RejectionReason(err)})
}

// StatusFor returns the HTTP status for a service error
func StatusFor(err error) int {
	var valErr *csvupload.ValidationError
	switch {
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case gateway.IsGatewayError(err):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownExportSource):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrGuardRejected),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrRequestInFlight),
		errors.Is(err, workflow.ErrStaleResponse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
