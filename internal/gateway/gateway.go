// Package gateway is the contract between the workflow and the simulation backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"futurecustomer/internal/model"
)

// Gateway is the backend the workflow drives. Each call may block; the caller's
// context bounds it.
type Gateway interface {
	CreateAgents(ctx context.Context, count int) ([]model.Agent, error)
	SubmitQuestions(ctx context.Context, questions []string) (*model.QuestionResponses, error)
	SubmitScenario(ctx context.Context, text string) (*model.ScenarioAck, error)
	FetchExport(ctx context.Context, questions []string) (*model.ExportDownload, error)
}

// NetworkError is a non-success status from the backend
type NetworkError struct {
	Status int
	Body   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
	return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a response body the workflow could not understand
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err came from the backend boundary
func IsGatewayError(err error) bool {
	var netErr *NetworkError
	var decErr *DecodeError
	return errors.As(err, &netErr) || errors.As(err, &decErr)
}

type sessionKey struct{}

// WithSession scopes backend calls made with ctx to a workflow session
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session set by WithSession
func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}
