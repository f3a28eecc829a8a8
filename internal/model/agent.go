package model

import "strconv"

// MinAgents and MaxAgents bound the size of one agent pool
const (
	MinAgents = 1
	MaxAgents = 100
)

// Agent is a synthetic respondent created by the backend
type Agent struct {
	ID     int    `json:"id" bson:"id"` // 1-based ordinal, "Agent 1" is the first row of every export
	Age    int    `json:"age" bson:"age"`
	Gender string `json:"gender" bson:"gender"`
}

// Label returns the display label used in exports
func (a Agent) Label() string {
	return AgentLabel(a.ID)
}

// AgentLabel formats a 1-based ordinal as "Agent N"
func AgentLabel(ordinal int) string {
	return "Agent " + strconv.Itoa(ordinal)
}
