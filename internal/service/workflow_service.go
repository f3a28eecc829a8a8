package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"futurecustomer/internal/csvupload"
	"futurecustomer/internal/export"
	"futurecustomer/internal/gateway"
	"futurecustomer/internal/model"
	"futurecustomer/internal/workflow"
)

// Toast texts
const (
	msgAgentsCreated  = "%d agents created successfully!"
	msgAgentsFailed   = "Could not create agents"
	msgCSVSubmitted   = "CSV submitted successfully!"
	msgCSVFailed      = "Could not submit CSV data"
	msgScenarioDone   = "Scenario deployed successfully"
	msgScenarioFailed = "Error deploying scenario! Message: %s"
	msgDownloadFailed = "Could not download agent responses"
)

// ExportSource selects who builds the archive
type ExportSource string

const (
	ExportLocal   ExportSource = "local"
	ExportBackend ExportSource = "backend"
)

var ErrUnknownExportSource = errors.New("unknown export source")

// ParseExportSource parses a source name, empty means local
func ParseExportSource(s string) (ExportSource, error) {
	switch ExportSource(strings.ToLower(s)) {
	case "", ExportLocal:
		return ExportLocal, nil
	case ExportBackend:
		return ExportBackend, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExportSource, s)
}

// WorkflowMetrics records workflow activity
type WorkflowMetrics interface {
	ObserveTransition(event, from, to string)
	ObserveRejection(action, reason string)
	ObserveToast(kind string)
}

// WorkflowService runs session workflows against the simulation backend
type WorkflowService struct {
	sessions    *SessionService
	auth        *AuthService
	gateway     gateway.Gateway
	toastTTL    time.Duration
	metrics     WorkflowMetrics
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(sessions *SessionService, auth *AuthService, gw gateway.Gateway, toastTTL time.Duration, metrics WorkflowMetrics, logger *slog.Logger) *WorkflowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowService{
		sessions: sessions,
		auth:     auth,
		gateway:  gw,
		toastTTL: toastTTL,
		metrics:  metrics,
		logger:   logger.With("component", "workflow"),
		now:      time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *WorkflowService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// OpenSession starts a new workflow and returns its token
func (s *WorkflowService) OpenSession() (*model.SessionResponse, error) {
	resp, err := s.auth.NewSession()
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	obs := &sessionObserver{svc: s, sessionID: resp.SessionID}
	obs.machine = workflow.NewMachine(s.toastTTL, obs)
	s.sessions.Open(resp.SessionID, obs.machine)
	return resp, nil
}

// CloseSession ends a workflow
func (s *WorkflowService) CloseSession(sessionID string) error {
	return s.sessions.Close(sessionID)
}

// Snapshot returns the current workflow state
func (s *WorkflowService) Snapshot(sessionID string) (*workflow.Snapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Machine.Snapshot()
	return &snap, nil
}

// Gates evaluates the gates for draft input
func (s *WorkflowService) Gates(sessionID string, draft workflow.Draft) (*workflow.Gates, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	g := sess.Machine.Gates(draft)
	return &g, nil
}

// CreateAgents asks the backend for a pool of count agents
func (s *WorkflowService) CreateAgents(ctx context.Context, sessionID string, count int) (*workflow.Snapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	m := sess.Machine

	ticket, err := m.BeginCreateAgents(count)
	if err != nil {
		s.reject("create_agents", err)
		return nil, err
	}

	agents, err := s.gateway.CreateAgents(s.backendContext(ctx, sessionID), count)
	if err != nil {
		return nil, s.fail(sess, ticket, "create_agents", msgAgentsFailed, err)
	}
	if err := m.CompleteCreateAgents(ticket, agents); err != nil {
		return nil, s.dropped(sessionID, "create_agents", err)
	}

	s.toast(sess, workflow.ToastSuccess, fmt.Sprintf(msgAgentsCreated, len(agents)))
	return s.snapshot(m), nil
}

// UploadQuestions validates a raw CSV upload and submits its questions
func (s *WorkflowService) UploadQuestions(ctx context.Context, sessionID, raw string) (*workflow.Snapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	m := sess.Machine

	questions, err := csvupload.Validate(raw)
	if err != nil {
		s.reject("upload_questions", err)
		s.toast(sess, workflow.ToastError, err.Error())
		return nil, err
	}

	ticket, err := m.LoadQuestions(questions)
	if err != nil {
		s.reject("upload_questions", err)
		return nil, err
	}

	resp, err := s.gateway.SubmitQuestions(s.backendContext(ctx, sessionID), questions)
	if err != nil {
		return nil, s.fail(sess, ticket, "upload_questions", msgCSVFailed, err)
	}
	if err := m.CompleteQuestions(ticket, resp); err != nil {
		return nil, s.dropped(sessionID, "upload_questions", err)
	}

	s.toast(sess, workflow.ToastSuccess, msgCSVSubmitted)
	return s.snapshot(m), nil
}

// SubmitScenario deploys a scenario to the agent pool
func (s *WorkflowService) SubmitScenario(ctx context.Context, sessionID, text string) (*workflow.Snapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	m := sess.Machine

	ticket, err := m.BeginScenario(text)
	if err != nil {
		s.reject("submit_scenario", err)
		return nil, err
	}

	text = strings.TrimSpace(text)
	if _, err := s.gateway.SubmitScenario(s.backendContext(ctx, sessionID), text); err != nil {
		return nil, s.fail(sess, ticket, "submit_scenario", fmt.Sprintf(msgScenarioFailed, failureDetail(err)), err)
	}
	if err := m.CompleteScenario(ticket, text, s.now()); err != nil {
		return nil, s.dropped(sessionID, "submit_scenario", err)
	}

	s.toast(sess, workflow.ToastSuccess, msgScenarioDone)
	return s.snapshot(m), nil
}

// Export builds the response archive, locally from session state or by the backend
func (s *WorkflowService) Export(ctx context.Context, sessionID string, source ExportSource) (*model.ExportDownload, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	m := sess.Machine

	ticket, in, err := m.BeginExport()
	if err != nil {
		s.reject("export", err)
		return nil, err
	}

	var dl *model.ExportDownload
	switch source {
	case ExportBackend:
		dl, err = s.gateway.FetchExport(s.backendContext(ctx, sessionID), in.Questions)
	default:
		dl, err = export.Download(in.Agents, in.Baseline, in.Future)
	}
	if err != nil {
		return nil, s.fail(sess, ticket, "export", msgDownloadFailed, err)
	}
	if err := m.CompleteExport(ticket); err != nil {
		return nil, s.dropped(sessionID, "export", err)
	}

	s.logger.Info("export built", "session", sessionID, "source", source, "file", dl.FileName, "bytes", len(dl.Data))
	return dl, nil
}

// Reset clears the workflow back to its initial state
func (s *WorkflowService) Reset(sessionID string) (*workflow.Snapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Machine.Reset()
	s.logger.Info("workflow reset", "session", sessionID)
	return s.snapshot(sess.Machine), nil
}

// backendContext keeps a backend call alive when the HTTP client goes away.
// The gateway client's own timeout bounds it.
func (s *WorkflowService) backendContext(ctx context.Context, sessionID string) context.Context {
	return gateway.WithSession(context.WithoutCancel(ctx), sessionID)
}

// fail releases the edge of a failed backend call and reports the failure
func (s *WorkflowService) fail(sess *Session, ticket workflow.Ticket, action, msg string, err error) error {
	s.logger.Error("backend call failed", "session", sess.ID, "action", action, "error", err)
	if abortErr := sess.Machine.Abort(ticket); abortErr != nil {
		// the workflow moved on while the call was out
		s.logger.Warn("dropping failure of superseded request", "session", sess.ID, "action", action)
		return abortErr
	}
	s.reject(action, err)
	s.toast(sess, workflow.ToastError, msg)
	return fmt.Errorf("%s: %w", action, err)
}

// failureDetail prefers the backend's own error message
func failureDetail(err error) string {
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) && netErr.Body != "" {
		return netErr.Body
	}
	return err.Error()
}

func (s *WorkflowService) dropped(sessionID, action string, err error) error {
	s.logger.Warn("dropping stale backend response", "session", sessionID, "action", action, "error", err)
	s.reject(action, err)
	return err
}

func (s *WorkflowService) toast(sess *Session, kind workflow.ToastKind, text string) {
	t := sess.Machine.Toast(kind, text)
	if s.metrics != nil {
		s.metrics.ObserveToast(string(kind))
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sess.ID, EventToast, t)
	}
}

func (s *WorkflowService) reject(action string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveRejection(action, RejectionReason(err))
	}
}

func (s *WorkflowService) snapshot(m *workflow.Machine) *workflow.Snapshot {
	snap := m.Snapshot()
	return &snap
}

// RejectionReason names the class of a workflow error for logs and metrics
func RejectionReason(err error) string {
	var netErr *gateway.NetworkError
	var decErr *gateway.DecodeError
	var valErr *csvupload.ValidationError
	switch {
	case errors.Is(err, workflow.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, workflow.ErrScenarioTooShort):
		return "scenario_too_short"
	case errors.Is(err, workflow.ErrGuardRejected):
		return "guard_rejected"
	case errors.Is(err, workflow.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, workflow.ErrRequestInFlight):
		return "request_in_flight"
	case errors.Is(err, workflow.ErrStaleResponse):
		return "stale_response"
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &decErr):
		return "decode"
	default:
		return "error"
	}
}

// sessionObserver forwards machine events of one session to metrics and WebSocket
type sessionObserver struct {
	svc       *WorkflowService
	sessionID string
	machine   *workflow.Machine
}

func (o *sessionObserver) TransitionApplied(e workflow.Event, from, to workflow.State) {
	s := o.svc
	s.logger.Info("workflow transition", "session", o.sessionID, "event", e, "from", from, "to", to)
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(e), from.String(), to.String())
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(o.sessionID, EventStateChanged, o.machine.Snapshot())
	}
}

func (o *sessionObserver) ToastDismissed(t workflow.Toast) {
	if o.svc.broadcaster != nil {
		o.svc.broadcaster.BroadcastToSession(o.sessionID, EventToastDismissed, t)
	}
}
