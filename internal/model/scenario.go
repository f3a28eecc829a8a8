package model

import "time"

// MinScenarioLength is the shortest trimmed scenario text the workflow accepts
const MinScenarioLength = 5

// Scenario is a free-text perturbation applied to the agent pool
type Scenario struct {
	Text        string    `json:"text" bson:"text"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// ScenarioAck is the backend acknowledgement of a scenario submission
type ScenarioAck struct {
	Message string `json:"message"`
}
