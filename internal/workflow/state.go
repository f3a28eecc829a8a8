// Package workflow gates the simulation workflow: which actions are legal in
// which stage, which backend responses are still current, and which toast is
// on screen.
package workflow

import "fmt"

// State is a workflow stage. States are ordered, later stages unlock more actions.
type State int

const (
	StateEmpty State = iota
	StateAgentsCreated
	StateQuestionsLoaded
	StateResponsesReceived
	StateScenarioSubmitted
	StateFutureQuestionsLoaded
	StateFutureResponsesReceived
)

var stateNames = [...]string{
	StateEmpty:                   "empty",
	StateAgentsCreated:           "agents_created",
	StateQuestionsLoaded:         "questions_loaded",
	StateResponsesReceived:       "responses_received",
	StateScenarioSubmitted:       "scenario_submitted",
	StateFutureQuestionsLoaded:   "future_questions_loaded",
	StateFutureResponsesReceived: "future_responses_received",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnderScenario reports whether a scenario is active in this state
func (s State) UnderScenario() bool {
	return s >= StateScenarioSubmitted
}

// Event drives a transition
type Event string

const (
	EventAgentsCreated     Event = "agents_created"
	EventQuestionsLoaded   Event = "questions_loaded"
	EventResponsesReceived Event = "responses_received"
	EventScenarioSubmitted Event = "scenario_submitted"
	EventReset             Event = "reset"

	// EventUploadFailed is reported when a failed question submission puts
	// back the previous round. Next does not accept it.
	EventUploadFailed Event = "upload_failed"
)

// Next returns the state that event leads to from s. It has no side effects.
func Next(s State, e Event) (State, error) {
	switch e {
	case EventReset:
		return StateEmpty, nil

	case EventAgentsCreated:
		if s == StateEmpty {
			return StateAgentsCreated, nil
		}

	case EventQuestionsLoaded:
		switch {
		case s.UnderScenario():
			return StateFutureQuestionsLoaded, nil
		case s >= StateAgentsCreated:
			return StateQuestionsLoaded, nil
		}

	case EventResponsesReceived:
		switch s {
		case StateQuestionsLoaded:
			return StateResponsesReceived, nil
		case StateFutureQuestionsLoaded:
			return StateFutureResponsesReceived, nil
		}

	case EventScenarioSubmitted:
		if s >= StateResponsesReceived {
			return StateScenarioSubmitted, nil
		}
	}
	return s, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, e, s)
}
