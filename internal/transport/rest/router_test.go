package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurecustomer/internal/export"
	"futurecustomer/internal/gateway"
	"futurecustomer/internal/metrics"
	"futurecustomer/internal/model"
	"futurecustomer/internal/service"
	"futurecustomer/internal/transport/ws"
	"futurecustomer/internal/workflow"
)

type fakeGateway struct {
	agentCount int
	failAgents bool
}

func (f *fakeGateway) CreateAgents(_ context.Context, count int) ([]model.Agent, error) {
	if f.failAgents {
		return nil, &gateway.NetworkError{Status: http.StatusInternalServerError}
	}
	f.agentCount = count
	agents := make([]model.Agent, count)
	for i := range agents {
		agents[i] = model.Agent{ID: i + 1, Age: 30 + i, Gender: "male"}
	}
	return agents, nil
}

func (f *fakeGateway) SubmitQuestions(_ context.Context, questions []string) (*model.QuestionResponses, error) {
	resp := &model.QuestionResponses{}
	for i, q := range questions {
		d := model.ResponseDistribution{Order: i, Question: q}
		for a := 0; a < f.agentCount; a++ {
			d.Responses = append(d.Responses, 3)
		}
		resp.Distributions = append(resp.Distributions, d)
	}
	return resp, nil
}

func (f *fakeGateway) SubmitScenario(context.Context, string) (*model.ScenarioAck, error) {
	return &model.ScenarioAck{Message: "ok"}, nil
}

func (f *fakeGateway) FetchExport(context.Context, []string) (*model.ExportDownload, error) {
	return &model.ExportDownload{FileName: "from_backend.zip", Data: []byte("zip")}, nil
}

type client struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newTestServer(t *testing.T, gw gateway.Gateway) *client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	hub := ws.NewHub(logger)
	t.Cleanup(hub.Close)

	auth := service.NewAuthService("secret", time.Hour)
	sessions := service.NewSessionService(time.Hour, m, logger)
	wf := service.NewWorkflowService(sessions, auth, gw, time.Minute, m, logger)

	srv := httptest.NewServer(NewRouter(&Container{
		AuthService:     auth,
		WorkflowService: wf,
		WSHub:           hub,
		Metrics:         m,
		CORSOrigins:     []string{"*"},
		Logger:          logger,
	}))
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}
}

func (c *client) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) json(method, path string, body interface{}) *http.Response {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	return c.do(method, path, "application/json", r)
}

func (c *client) open() {
	c.t.Helper()
	resp := c.json(http.MethodPost, "/v1/sessions", nil)
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	var s model.SessionResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&s))
	c.token = s.Token
}

func decodeSnapshot(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var snap map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func decodeError(t *testing.T, resp *http.Response) model.ErrorResponse {
	t.Helper()
	var e model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestRouter_Workflow(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})
	c.open()

	resp := c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "agents_created", decodeSnapshot(t, resp)["state"])

	resp = c.do(http.MethodPost, "/v1/session/questions", "text/csv", strings.NewReader("Q1\nQ2\nQ3\n"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "responses_received", decodeSnapshot(t, resp)["state"])

	resp = c.do(http.MethodGet, "/v1/session/export", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename=agent_responses.zip`, resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	archive, err := export.ReadZip(data)
	require.NoError(t, err)
	require.Len(t, archive.Entries, 1)
	assert.True(t, strings.HasPrefix(string(archive.Entries[0].Content), "Agent,Age,Gender,q1,q2,q3\nAgent 1,30,male,3,3,3\n"))

	resp = c.do(http.MethodGet, "/v1/session/export?source=backend", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename=from_backend.zip`, resp.Header.Get("Content-Disposition"))
}

func TestRouter_MultipartUpload(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})
	c.open()
	c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 2})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "questions.csv")
	require.NoError(t, err)
	fw.Write([]byte("Do you like tea?\nDo you like coffee?\n"))
	require.NoError(t, mw.Close())

	resp := c.do(http.MethodPost, "/v1/session/questions", mw.FormDataContentType(), &buf)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeSnapshot(t, resp)
	baseline := snap["baseline"].(map[string]interface{})
	assert.Len(t, baseline["questions"], 2)
}

func TestRouter_ErrorStatuses(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})
	c.open()

	resp := c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 0})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "out_of_range", decodeError(t, resp).Code)

	resp = c.do(http.MethodPost, "/v1/session/questions", "text/csv", strings.NewReader("Q1"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", decodeError(t, resp).Code)

	c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 2})

	resp = c.do(http.MethodPost, "/v1/session/questions", "text/csv", strings.NewReader("Col1,Col2"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "Row 1 can only contain one column. Found 2.", e.Error)
	assert.Equal(t, "validation", e.Code)

	resp = c.do(http.MethodPost, "/v1/session/questions", "text/csv", strings.NewReader(""))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "CSV is empty", decodeError(t, resp).Error)

	resp = c.json(http.MethodPost, "/v1/session/scenario", model.ScenarioRequest{Scenario: "Prices double"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.do(http.MethodGet, "/v1/session/export?source=ftp", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, "/v1/session/agents", "application/json", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_GatewayFailure(t *testing.T) {
	c := newTestServer(t, &fakeGateway{failAgents: true})
	c.open()

	resp := c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 3})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "simulation backend request failed", decodeError(t, resp).Error)

	resp = c.do(http.MethodGet, "/v1/session", "", nil)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, "empty", snap["state"])
	assert.Equal(t, "Could not create agents", snap["toast"].(map[string]interface{})["text"])
}

func TestRouter_Gates(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})
	c.open()

	resp := c.do(http.MethodGet, "/v1/session/gates?count=5", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g workflow.Gates
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.True(t, g.CreateAgents)
	assert.False(t, g.Download)

	resp = c.do(http.MethodGet, "/v1/session/gates?count=500", "", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.False(t, g.CreateAgents)

	resp = c.do(http.MethodGet, "/v1/session/gates?count=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ResetAndClose(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})
	c.open()
	c.json(http.MethodPost, "/v1/session/agents", model.CreateAgentsRequest{Count: 3})

	resp := c.do(http.MethodPost, "/v1/session/reset", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "empty", decodeSnapshot(t, resp)["state"])

	resp = c.do(http.MethodDelete, "/v1/session", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.do(http.MethodGet, "/v1/session", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Auth(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})

	resp := c.do(http.MethodGet, "/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.token = "not-a-jwt"
	resp = c.do(http.MethodGet, "/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_Ambient(t *testing.T) {
	c := newTestServer(t, &fakeGateway{})

	resp := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	c.open()
	resp = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "futurecustomer_sessions_active 1")

	resp = c.do(http.MethodGet, "/v1/swagger.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/session/questions")

	resp = c.do(http.MethodOptions, "/v1/session/agents", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
