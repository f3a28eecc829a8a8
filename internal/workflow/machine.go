package workflow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"futurecustomer/internal/model"
)

// DefaultToastTTL is how long a toast stays on screen
const DefaultToastTTL = 3 * time.Second

// Edge is a kind of backend request. At most one request per edge is in flight.
type Edge string

const (
	EdgeAgents    Edge = "agents"
	EdgeQuestions Edge = "questions"
	EdgeScenario  Edge = "scenario"
	EdgeExport    Edge = "export"
)

var edges = []Edge{EdgeAgents, EdgeQuestions, EdgeScenario, EdgeExport}

// Ticket identifies one in-flight request. Completing with a ticket that is no
// longer pending for its edge, or that predates the last reset, fails with
// ErrStaleResponse.
type Ticket struct {
	Edge  Edge   `json:"edge"`
	Token uint64 `json:"token"`
	Epoch uint64 `json:"epoch"`
}

// Observer is notified after state changes and toast dismissals. Calls are made
// without the machine lock held.
type Observer interface {
	TransitionApplied(event Event, from, to State)
	ToastDismissed(toast Toast)
}

// Gates are the actions the UI may offer
type Gates struct {
	Dashboard      bool `json:"dashboard"`
	Upload         bool `json:"upload"`
	PresentAnswers bool `json:"presentAnswers"`
	SubmitScenario bool `json:"submitScenario"`
	FutureAnswers  bool `json:"futureAnswers"`
	Download       bool `json:"download"`
	CreateAgents   bool `json:"createAgents"`
	Reset          bool `json:"reset"`
}

// Draft holds not yet submitted user input that some gates depend on
type Draft struct {
	AgentCount int
	Scenario   string
}

// Snapshot is a copy of the machine state
type Snapshot struct {
	State    State           `json:"state"`
	Epoch    uint64          `json:"epoch"`
	Gates    Gates           `json:"gates"`
	Agents   []model.Agent   `json:"agents"`
	Baseline *model.Round    `json:"baseline,omitempty"`
	Future   *model.Round    `json:"future,omitempty"`
	Scenario *model.Scenario `json:"scenario,omitempty"`
	InFlight []Edge          `json:"inFlight"`
	Toast    *Toast          `json:"toast,omitempty"`
}

// ExportInput is what an export needs, copied out of the machine
type ExportInput struct {
	Agents    []model.Agent
	Baseline  model.Round
	Future    *model.Round
	Questions []string // latest uploaded question set
}

// Machine is the workflow of one session. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	epoch    uint64
	gen      uint64
	pending  map[Edge]uint64
	agents   []model.Agent
	baseline *model.Round
	future   *model.Round
	scenario *model.Scenario
	rollback *rollback

	toaster  *Toaster
	toastTTL time.Duration
	observer Observer
}

// rollback is what a question submission replaced, put back if it fails
type rollback struct {
	token    uint64
	state    State
	baseline *model.Round
	future   *model.Round
}

// NewMachine creates a machine in StateEmpty. observer may be nil.
func NewMachine(toastTTL time.Duration, observer Observer) *Machine {
	if toastTTL <= 0 {
		toastTTL = DefaultToastTTL
	}
	m := &Machine{
		pending:  make(map[Edge]uint64),
		toastTTL: toastTTL,
		observer: observer,
	}
	m.toaster = NewToaster(func(t Toast) {
		if m.observer != nil {
			m.observer.ToastDismissed(t)
		}
	})
	return m
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// BeginCreateAgents starts an agent creation request
func (m *Machine) BeginCreateAgents(count int) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count < model.MinAgents || count > model.MaxAgents {
		return Ticket{}, ErrOutOfRange
	}
	if _, err := Next(m.state, EventAgentsCreated); err != nil {
		return Ticket{}, err
	}
	if len(m.pending) > 0 {
		return Ticket{}, ErrRequestInFlight
	}
	return m.beginLocked(EdgeAgents)
}

// CompleteCreateAgents stores the agent batch and moves to StateAgentsCreated
func (m *Machine) CompleteCreateAgents(t Ticket, agents []model.Agent) error {
	m.mu.Lock()
	if err := m.completeLocked(t, EdgeAgents); err != nil {
		m.mu.Unlock()
		return err
	}
	from, to, err := m.transitionLocked(EventAgentsCreated)
	if err == nil {
		m.agents = append([]model.Agent(nil), agents...)
	}
	m.mu.Unlock()

	m.notify(EventAgentsCreated, from, to, err)
	return err
}

// LoadQuestions installs a validated question list and starts its submission.
// Before a scenario the list replaces the baseline round, under a scenario it
// replaces the future round. Aborting the submission restores the replaced
// round. Uploads wait for an in-flight scenario to settle.
func (m *Machine) LoadQuestions(questions []string) (Ticket, error) {
	if len(questions) == 0 {
		return Ticket{}, ErrNoQuestions
	}

	m.mu.Lock()
	if _, err := Next(m.state, EventQuestionsLoaded); err != nil {
		m.mu.Unlock()
		return Ticket{}, err
	}
	_, questionsBusy := m.pending[EdgeQuestions]
	_, scenarioBusy := m.pending[EdgeScenario]
	if questionsBusy || scenarioBusy {
		m.mu.Unlock()
		return Ticket{}, ErrRequestInFlight
	}

	ticket, _ := m.beginLocked(EdgeQuestions)
	m.rollback = &rollback{token: ticket.Token, state: m.state, baseline: m.baseline, future: m.future}
	from, to, _ := m.transitionLocked(EventQuestionsLoaded)
	round := &model.Round{Questions: model.NewQuestions(questions)}
	if to == StateFutureQuestionsLoaded {
		m.future = round
	} else {
		m.baseline = round
	}
	m.mu.Unlock()

	m.notify(EventQuestionsLoaded, from, to, nil)
	return ticket, nil
}

// CompleteQuestions stores the distributions for the loaded round
func (m *Machine) CompleteQuestions(t Ticket, resp *model.QuestionResponses) error {
	if resp == nil {
		resp = &model.QuestionResponses{}
	}

	m.mu.Lock()
	if err := m.completeLocked(t, EdgeQuestions); err != nil {
		m.mu.Unlock()
		return err
	}
	m.rollback = nil
	from, to, err := m.transitionLocked(EventResponsesReceived)
	if err == nil {
		round := m.baseline
		if to == StateFutureResponsesReceived {
			round = m.future
		}
		round.Distributions = resp.Distributions
		round.FutureDistributions = resp.FutureDistributions
	}
	m.mu.Unlock()

	m.notify(EventResponsesReceived, from, to, err)
	return err
}

// BeginScenario starts a scenario submission
func (m *Machine) BeginScenario(text string) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := Next(m.state, EventScenarioSubmitted); err != nil {
		return Ticket{}, err
	}
	if !scenarioLongEnough(text) {
		return Ticket{}, ErrScenarioTooShort
	}
	if _, busy := m.pending[EdgeScenario]; busy {
		return Ticket{}, ErrRequestInFlight
	}
	return m.beginLocked(EdgeScenario)
}

// CompleteScenario activates the scenario. Any future round collected under an
// earlier scenario is discarded, along with an in-flight question submission.
func (m *Machine) CompleteScenario(t Ticket, text string, at time.Time) error {
	m.mu.Lock()
	if err := m.completeLocked(t, EdgeScenario); err != nil {
		m.mu.Unlock()
		return err
	}
	from, to, err := m.transitionLocked(EventScenarioSubmitted)
	if err == nil {
		m.scenario = &model.Scenario{Text: strings.TrimSpace(text), SubmittedAt: at}
		m.future = nil
		delete(m.pending, EdgeQuestions)
		m.rollback = nil
	}
	m.mu.Unlock()

	m.notify(EventScenarioSubmitted, from, to, err)
	return err
}

// BeginExport starts an export and returns a copy of the data to encode
func (m *Machine) BeginExport() (Ticket, *ExportInput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.baseline == nil || m.state < StateResponsesReceived {
		return Ticket{}, nil, fmt.Errorf("%w: export in state %s", ErrInvalidTransition, m.state)
	}
	if _, busy := m.pending[EdgeExport]; busy {
		return Ticket{}, nil, ErrRequestInFlight
	}
	ticket, err := m.beginLocked(EdgeExport)
	if err != nil {
		return Ticket{}, nil, err
	}

	in := &ExportInput{
		Agents:   append([]model.Agent(nil), m.agents...),
		Baseline: copyRound(*m.baseline),
	}
	latest := m.baseline
	if m.future != nil {
		f := copyRound(*m.future)
		in.Future = &f
		latest = m.future
	}
	in.Questions = model.QuestionTexts(latest.Questions)
	return ticket, in, nil
}

// CompleteExport releases the export edge
func (m *Machine) CompleteExport(t Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeLocked(t, EdgeExport)
}

// Abort releases the edge of a failed request. A failed question submission
// puts back the round and state it replaced.
func (m *Machine) Abort(t Ticket) error {
	m.mu.Lock()
	if err := m.completeLocked(t, t.Edge); err != nil {
		m.mu.Unlock()
		return err
	}
	rb := m.rollback
	if t.Edge != EdgeQuestions || rb == nil || rb.token != t.Token {
		m.mu.Unlock()
		return nil
	}
	m.rollback = nil
	from := m.state
	m.state = rb.state
	m.baseline = rb.baseline
	m.future = rb.future
	m.mu.Unlock()

	m.notify(EventUploadFailed, from, rb.state, nil)
	return nil
}

// Reset clears everything and returns to StateEmpty. Responses to requests
// issued before the reset are rejected as stale.
func (m *Machine) Reset() {
	m.mu.Lock()
	from := m.state
	m.state = StateEmpty
	m.epoch++
	m.pending = make(map[Edge]uint64)
	m.agents = nil
	m.baseline = nil
	m.future = nil
	m.scenario = nil
	m.rollback = nil
	m.toaster.Cancel()
	m.mu.Unlock()

	m.notify(EventReset, from, StateEmpty, nil)
}

// Toast shows a message, replacing any toast on screen
func (m *Machine) Toast(kind ToastKind, text string) Toast {
	return m.toaster.Show(kind, text, m.toastTTL)
}

// CurrentToast returns the toast on screen, if any
func (m *Machine) CurrentToast() (Toast, bool) {
	return m.toaster.Current()
}

// Gates evaluates the gates for the given draft input
func (m *Machine) Gates(d Draft) Gates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gatesLocked(&d)
}

// Snapshot copies the current state. Draft-dependent guards are not applied to
// its gates.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	s := Snapshot{
		State:    m.state,
		Epoch:    m.epoch,
		Gates:    m.gatesLocked(nil),
		Agents:   append([]model.Agent{}, m.agents...),
		InFlight: []Edge{},
	}
	if m.baseline != nil {
		r := copyRound(*m.baseline)
		s.Baseline = &r
	}
	if m.future != nil {
		r := copyRound(*m.future)
		s.Future = &r
	}
	if m.scenario != nil {
		sc := *m.scenario
		s.Scenario = &sc
	}
	for _, e := range edges {
		if _, busy := m.pending[e]; busy {
			s.InFlight = append(s.InFlight, e)
		}
	}
	m.mu.Unlock()

	if t, ok := m.toaster.Current(); ok {
		s.Toast = &t
	}
	return s
}

func (m *Machine) gatesLocked(d *Draft) Gates {
	_, questionsBusy := m.pending[EdgeQuestions]
	_, scenarioBusy := m.pending[EdgeScenario]
	_, exportBusy := m.pending[EdgeExport]

	g := Gates{
		Dashboard:      m.state >= StateAgentsCreated,
		Upload:         m.state >= StateAgentsCreated && !questionsBusy && !scenarioBusy,
		PresentAnswers: m.state >= StateResponsesReceived,
		SubmitScenario: m.state >= StateResponsesReceived && !scenarioBusy,
		FutureAnswers:  m.state == StateFutureQuestionsLoaded || m.state == StateFutureResponsesReceived,
		Download:       m.state >= StateResponsesReceived && !exportBusy,
		CreateAgents:   m.state == StateEmpty && len(m.pending) == 0,
		Reset:          true,
	}
	if d != nil {
		g.SubmitScenario = g.SubmitScenario && scenarioLongEnough(d.Scenario)
		g.CreateAgents = g.CreateAgents && d.AgentCount >= model.MinAgents && d.AgentCount <= model.MaxAgents
	}
	return g
}

func (m *Machine) beginLocked(e Edge) (Ticket, error) {
	if _, busy := m.pending[e]; busy {
		return Ticket{}, ErrRequestInFlight
	}
	m.gen++
	m.pending[e] = m.gen
	return Ticket{Edge: e, Token: m.gen, Epoch: m.epoch}, nil
}

func (m *Machine) completeLocked(t Ticket, e Edge) error {
	if t.Edge != e || t.Epoch != m.epoch {
		return ErrStaleResponse
	}
	if token, ok := m.pending[e]; !ok || token != t.Token {
		return ErrStaleResponse
	}
	delete(m.pending, e)
	return nil
}

func (m *Machine) transitionLocked(e Event) (State, State, error) {
	from := m.state
	to, err := Next(from, e)
	if err != nil {
		return from, from, err
	}
	m.state = to
	return from, to, nil
}

func (m *Machine) notify(e Event, from, to State, err error) {
	if err != nil || m.observer == nil {
		return
	}
	m.observer.TransitionApplied(e, from, to)
}

func scenarioLongEnough(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= model.MinScenarioLength
}

func copyRound(r model.Round) model.Round {
	return model.Round{
		Questions:           append([]model.Question(nil), r.Questions...),
		Distributions:       append([]model.ResponseDistribution(nil), r.Distributions...),
		FutureDistributions: append([]model.ResponseDistribution(nil), r.FutureDistributions...),
	}
}
