package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"futurecustomer/internal/export"
	"futurecustomer/internal/model"
)

// DefaultSession scopes requests that carry no session header
const DefaultSession = "default"

var (
	ErrCountOutOfRange   = fmt.Errorf("agent count must be between %d and %d", model.MinAgents, model.MaxAgents)
	ErrNoAgents          = errors.New("no agents created")
	ErrNoQuestions       = errors.New("no questions given")
	ErrEmptyScenario     = errors.New("scenario is empty")
	ErrNoResponses       = errors.New("no responses collected")
	ErrQuestionsMismatch = errors.New("questions do not match the last upload")
)

// StateStore keeps per-session simulator state
type StateStore interface {
	Load(ctx context.Context, sessionID string) (*model.SimulationState, error)
	Save(ctx context.Context, sessionID string, state *model.SimulationState) error
}

// Metrics counts which responder produced each batch
type Metrics interface {
	ObserveSimulation(responder string)
}

// Service implements the backend side of the workflow
type Service struct {
	store       StateStore
	source      RespondentSource
	responder   *Responder
	transformer *Transformer
	metrics     Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a simulator service. source and metrics may be nil.
func NewService(store StateStore, source RespondentSource, responder *Responder, transformer *Transformer, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       store,
		source:      source,
		responder:   responder,
		transformer: transformer,
		metrics:     metrics,
		logger:      logger.With("component", "simulator"),
		now:         time.Now,
	}
}

// CreateAgents builds a fresh pool for the session, dropping any earlier state
func (s *Service) CreateAgents(ctx context.Context, sessionID string, count int) ([]model.Agent, error) {
	if count < model.MinAgents || count > model.MaxAgents {
		return nil, ErrCountOutOfRange
	}

	pool, err := BuildPool(ctx, s.source, count)
	if err != nil {
		return nil, err
	}

	state := &model.SimulationState{Personas: pool}
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("agents created", "session", sessionID, "count", count)
	return state.Agents(), nil
}

// AnswerQuestions collects distributions for the baseline pool, and for the future
// pool when a scenario is active.
func (s *Service) AnswerQuestions(ctx context.Context, sessionID string, questions []string) (*model.QuestionResponses, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers, responder := s.responder.Answer(ctx, state.Personas, questions)
	s.observe(responder)

	round := &model.Round{
		Questions:     model.NewQuestions(questions),
		Distributions: Distributions(questions, answers),
	}
	resp := &model.QuestionResponses{
		Distributions:       round.Distributions,
		FutureDistributions: []model.ResponseDistribution{},
	}

	if state.UnderScenario() {
		futureAnswers, responder := s.responder.Answer(ctx, state.FuturePersonas, questions)
		s.observe(responder)
		round.FutureDistributions = Distributions(questions, futureAnswers)
		resp.FutureDistributions = round.FutureDistributions
		state.Future = round
	} else {
		state.Baseline = round
	}

	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("questions answered", "session", sessionID, "questions", len(questions), "future", state.UnderScenario())
	return resp, nil
}

// ApplyScenario transforms the pool into the scenario and discards earlier future answers
func (s *Service) ApplyScenario(ctx context.Context, sessionID, text string) (*model.ScenarioAck, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyScenario
	}
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	future, responder := s.transformer.Transform(ctx, state.Personas, text)
	s.observe(responder)

	state.FuturePersonas = future
	state.Scenario = &model.Scenario{Text: text, SubmittedAt: s.now().UTC()}
	state.Future = nil

	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("scenario applied", "session", sessionID)
	return &model.ScenarioAck{Message: "Future scenario received"}, nil
}

// Export builds the response archive. When questions are given they must equal the
// latest upload.
func (s *Service) Export(ctx context.Context, sessionID string, questions []string) (*model.ExportDownload, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Baseline == nil {
		return nil, ErrNoResponses
	}

	latest := state.Baseline
	if state.Future != nil {
		latest = state.Future
	}
	if len(questions) > 0 && !slices.Equal(questions, model.QuestionTexts(latest.Questions)) {
		return nil, ErrQuestionsMismatch
	}

	return export.Download(state.Agents(), *state.Baseline, state.Future)
}

func (s *Service) load(ctx context.Context, sessionID string) (*model.SimulationState, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if state == nil || len(state.Personas) == 0 {
		return nil, ErrNoAgents
	}
	return state, nil
}

func (s *Service) observe(responder string) {
	if s.metrics != nil {
		s.metrics.ObserveSimulation(responder)
	}
}
