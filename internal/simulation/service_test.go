package simulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurecustomer/internal/export"
	"futurecustomer/internal/model"
)

type memStore struct {
	mu      sync.Mutex
	states  map[string]*model.SimulationState
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*model.SimulationState)}
}

func (s *memStore) Load(_ context.Context, id string) (*model.SimulationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *memStore) Save(_ context.Context, id string, st *model.SimulationState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.states[id] = &cp
	return nil
}

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) ObserveSimulation(responder string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[responder]++
}

func newTestService(t *testing.T) (*Service, *memStore, *countingMetrics) {
	t.Helper()
	store := newMemStore()
	m := &countingMetrics{}
	logger := discardLogger()
	svc := NewService(store, nil, NewResponder(nil, "", logger), NewTransformer(nil, "", logger), m, logger)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, store, m
}

func TestService_CreateAgents(t *testing.T) {
	svc, store, _ := newTestService(t)

	agents, err := svc.CreateAgents(context.Background(), "s1", 4)
	require.NoError(t, err)
	require.Len(t, agents, 4)
	assert.Equal(t, 1, agents[0].ID)
	assert.Equal(t, 4, agents[3].ID)
	assert.Len(t, store.states["s1"].Personas, 4)

	_, err = svc.CreateAgents(context.Background(), "s1", 0)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
	_, err = svc.CreateAgents(context.Background(), "s1", 101)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
}

func TestService_AnswerQuestions_Baseline(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateAgents(ctx, "s1", 3)
	require.NoError(t, err)

	resp, err := svc.AnswerQuestions(ctx, "s1", []string{"q1", "q2"})
	require.NoError(t, err)
	require.Len(t, resp.Distributions, 2)
	assert.Empty(t, resp.FutureDistributions)
	assert.NotNil(t, resp.FutureDistributions)
	for i, d := range resp.Distributions {
		assert.Equal(t, i, d.Order)
		assert.Len(t, d.Responses, 3)
		assert.Equal(t, 3, d.Answers.Total())
	}

	st := store.states["s1"]
	require.NotNil(t, st.Baseline)
	assert.Nil(t, st.Future)
	assert.Equal(t, 1, m.counts[ResponderMock])
}

func TestService_ScenarioFlow(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateAgents(ctx, "s1", 5)
	require.NoError(t, err)
	_, err = svc.AnswerQuestions(ctx, "s1", []string{"q1"})
	require.NoError(t, err)

	ack, err := svc.ApplyScenario(ctx, "s1", "  Food prices triple  ")
	require.NoError(t, err)
	assert.NotEmpty(t, ack.Message)

	st := store.states["s1"]
	assert.Equal(t, "Food prices triple", st.Scenario.Text)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), st.Scenario.SubmittedAt)
	assert.Len(t, st.FuturePersonas, 5)

	resp, err := svc.AnswerQuestions(ctx, "s1", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Len(t, resp.Distributions, 2)
	assert.Len(t, resp.FutureDistributions, 2)

	st = store.states["s1"]
	require.NotNil(t, st.Future)
	assert.Equal(t, "q1", st.Baseline.Questions[0].Text)
	assert.Len(t, st.Baseline.Questions, 1)

	// baseline answers, scenario, baseline + future answers
	assert.Equal(t, 4, m.counts[ResponderMock])

	_, err = svc.ApplyScenario(ctx, "s1", "Something else entirely")
	require.NoError(t, err)
	assert.Nil(t, store.states["s1"].Future)
}

func TestService_Export(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateAgents(ctx, "s1", 2)
	require.NoError(t, err)

	_, err = svc.Export(ctx, "s1", nil)
	assert.ErrorIs(t, err, ErrNoResponses)

	_, err = svc.AnswerQuestions(ctx, "s1", []string{"q1", "q2"})
	require.NoError(t, err)

	dl, err := svc.Export(ctx, "s1", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, model.ArchiveFileName, dl.FileName)

	archive, err := export.ReadZip(dl.Data)
	require.NoError(t, err)
	require.Len(t, archive.Entries, 1)
	assert.Equal(t, model.ResponsesFileName, archive.Entries[0].Name)

	_, err = svc.Export(ctx, "s1", []string{"q2", "q1"})
	assert.ErrorIs(t, err, ErrQuestionsMismatch)

	_, err = svc.ApplyScenario(ctx, "s1", "Future scenario")
	require.NoError(t, err)
	_, err = svc.AnswerQuestions(ctx, "s1", []string{"q3"})
	require.NoError(t, err)

	dl, err = svc.Export(ctx, "s1", []string{"q3"})
	require.NoError(t, err)
	archive, err = export.ReadZip(dl.Data)
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)
	assert.Equal(t, model.FutureResponsesFileName, archive.Entries[1].Name)
}

func TestService_RequiresAgents(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AnswerQuestions(ctx, "nobody", []string{"q"})
	assert.ErrorIs(t, err, ErrNoAgents)
	_, err = svc.ApplyScenario(ctx, "nobody", "Future scenario")
	assert.ErrorIs(t, err, ErrNoAgents)
	_, err = svc.Export(ctx, "nobody", nil)
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestService_InputErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateAgents(ctx, "s1", 2)
	require.NoError(t, err)

	_, err = svc.AnswerQuestions(ctx, "s1", nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
	_, err = svc.ApplyScenario(ctx, "s1", "   ")
	assert.ErrorIs(t, err, ErrEmptyScenario)
}

func TestService_SessionsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateAgents(ctx, "a", 2)
	require.NoError(t, err)

	_, err = svc.AnswerQuestions(ctx, "b", []string{"q"})
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestService_SaveError(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.saveErr = errors.New("redis down")

	_, err := svc.CreateAgents(context.Background(), "s1", 2)
	assert.ErrorContains(t, err, "redis down")
}
