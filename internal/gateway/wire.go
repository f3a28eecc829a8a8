package gateway

import (
	"errors"
	"fmt"
	"mime"

	"futurecustomer/internal/model"
)

// Backend paths
const (
	PathAgents    = "/"
	PathQuestions = "/receive_user_csv"
	PathScenario  = "/receive_future_scenario"
	PathExport    = "/download_agent_response_csv"
)

// SessionHeader carries the workflow session to the backend
const SessionHeader = "X-Session-ID"

// QuestionsRequest is the body of a question or export submission
type QuestionsRequest struct {
	Questions []string `json:"questions"`
}

// ScenarioRequest is the body of a scenario submission
type ScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// ErrorResponse is the error body the backend sends
type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckDistributions verifies every distribution maps to exactly one submitted question
func CheckDistributions(dists []model.ResponseDistribution, questionCount int) error {
	seen := make(map[int]bool, len(dists))
	for _, d := range dists {
		if d.Order < 0 || d.Order >= questionCount {
			return fmt.Errorf("distribution order %d outside %d questions", d.Order, questionCount)
		}
		if seen[d.Order] {
			return fmt.Errorf("duplicate distribution for question %d", d.Order)
		}
		seen[d.Order] = true
	}
	return nil
}

// CheckAgents verifies an agent batch has the requested size and renumbers it so
// ordinals follow batch order starting at 1.
func CheckAgents(agents []model.Agent, count int) error {
	if len(agents) != count {
		return fmt.Errorf("requested %d agents, got %d", count, len(agents))
	}
	for i := range agents {
		agents[i].ID = i + 1
	}
	return nil
}

// FilenameFromDisposition extracts the filename hint of a Content-Disposition header
func FilenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

var errEmptyBody = errors.New("empty body")
