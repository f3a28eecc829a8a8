package model

// CreateAgentsRequest is the body of POST /v1/session/agents
type CreateAgentsRequest struct {
	Count int `json:"count"`
}

// ScenarioRequest is the body of POST /v1/session/scenario
type ScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
