package workflow

import (
	"errors"
	"fmt"

	"futurecustomer/internal/model"
)

var (
	ErrGuardRejected     = errors.New("action not allowed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRequestInFlight   = errors.New("request already in flight")
	ErrStaleResponse     = errors.New("stale response")
)

// Guard failures wrap ErrGuardRejected
var (
	ErrOutOfRange       = fmt.Errorf("%w: agent count must be between %d and %d", ErrGuardRejected, model.MinAgents, model.MaxAgents)
	ErrScenarioTooShort = fmt.Errorf("%w: scenario must be at least %d characters", ErrGuardRejected, model.MinScenarioLength)
	ErrNoQuestions      = fmt.Errorf("%w: question list is empty", ErrGuardRejected)
)
