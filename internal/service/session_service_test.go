package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurecustomer/internal/workflow"
)

type countingMetrics struct {
	opened, closed int
}

func (m *countingMetrics) SessionOpened() { m.opened++ }
func (m *countingMetrics) SessionClosed() { m.closed++ }

func TestSessionService_Sweep(t *testing.T) {
	metrics := &countingMetrics{}
	svc := NewSessionService(time.Hour, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	svc.Open("idle", workflow.NewMachine(time.Minute, nil))
	svc.Open("busy", workflow.NewMachine(time.Minute, nil))

	now = base.Add(50 * time.Minute)
	_, err := svc.Get("busy")
	require.NoError(t, err)

	assert.Equal(t, 0, svc.Sweep(base.Add(59*time.Minute)))
	assert.Equal(t, 1, svc.Sweep(base.Add(61*time.Minute)))

	_, ok := svc.Lookup("idle")
	assert.False(t, ok)
	_, ok = svc.Lookup("busy")
	assert.True(t, ok)
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 2, metrics.opened)
	assert.Equal(t, 1, metrics.closed)
}

func TestSessionService_CloseResetsMachine(t *testing.T) {
	svc := NewSessionService(time.Hour, nil, nil)
	m := workflow.NewMachine(time.Minute, nil)
	svc.Open("s1", m)

	tk, err := m.BeginCreateAgents(2)
	require.NoError(t, err)
	m.Toast(workflow.ToastSuccess, "hello")

	require.NoError(t, svc.Close("s1"))
	_, ok := m.CurrentToast()
	assert.False(t, ok)
	assert.ErrorIs(t, m.CompleteCreateAgents(tk, nil), workflow.ErrStaleResponse)

	_, err = svc.Get("s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthService_SessionTokens(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	resp, err := auth.NewSession()
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	claims, err := auth.ValidateSessionToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	_, err = NewAuthService("other", time.Hour).ValidateSessionToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateSessionToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
