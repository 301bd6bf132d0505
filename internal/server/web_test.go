package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songwd/calassist/internal/agent"
	"github.com/songwd/calassist/internal/config"
	"github.com/songwd/calassist/internal/tools"
)

// stubResponder replies with a counter and records the history state it
// was handed.
type stubResponder struct {
	calls       int
	lastInput   string
	historyLens []int
}

func (s *stubResponder) Respond(ctx context.Context, history *agent.History, input string) string {
	s.calls++
	s.lastInput = input
	s.historyLens = append(s.historyLens, history.Len())
	return fmt.Sprintf("reply %d", s.calls)
}

func newTestServer(t *testing.T) (*WebServer, *stubResponder, *AppContext) {
	t.Helper()

	cfg := &config.Config{HTTPAddr: ":0"}
	responder := &stubResponder{}
	app := NewAppContext(context.Background(), cfg, responder, tools.NewRegistry(), nil, nil, nil)
	ws := NewWebServer(app)
	t.Cleanup(ws.sessions.Stop)
	return ws, responder, app
}

func postChat(t *testing.T, ws *WebServer, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	return rec
}

func TestChatCreatesSession(t *testing.T) {
	ws, responder, _ := newTestServer(t)

	rec := postChat(t, ws, ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "reply 1", resp.Reply)
	assert.Equal(t, "hello", responder.lastInput)
	assert.Equal(t, 1, ws.Sessions().Count())
}

func TestChatContinuesSession(t *testing.T) {
	ws, responder, _ := newTestServer(t)

	rec := postChat(t, ws, ChatRequest{Message: "first"})
	var first ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = postChat(t, ws, ChatRequest{SessionID: first.SessionID, Message: "second"})
	require.Equal(t, http.StatusOK, rec.Code)

	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, ws.Sessions().Count())

	// The second turn sees the first exchange in history.
	require.Len(t, responder.historyLens, 2)
	assert.Equal(t, 0, responder.historyLens[0])
	assert.Equal(t, 2, responder.historyLens[1])
}

func TestChatUnknownSessionStartsFresh(t *testing.T) {
	ws, _, _ := newTestServer(t)

	rec := postChat(t, ws, ChatRequest{SessionID: "gone", Message: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, "gone", resp.SessionID)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	ws, responder, _ := newTestServer(t)

	rec := postChat(t, ws, ChatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postChat(t, ws, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, responder.calls)
}

func TestHealthEndpoints(t *testing.T) {
	ws, _, app := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A shutting-down app fails readiness but stays live.
	require.NoError(t, app.Shutdown())

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetailedHealth(t *testing.T) {
	ws, _, _ := newTestServer(t)

	postChat(t, ws, ChatRequest{Message: "hello"})

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rec := httptest.NewRecorder()
	ws.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
	assert.Equal(t, 1, resp.Sessions)
	assert.False(t, resp.Instrumentation)
}

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "plain email",
			message: "book a meeting with alice@example.com tomorrow",
			want:    "alice@example.com",
		},
		{
			name:    "first of several",
			message: "invite bob@corp.io and carol@corp.io",
			want:    "bob@corp.io",
		},
		{
			name:    "subdomain and plus tag",
			message: "use dev+cal@mail.example.org please",
			want:    "dev+cal@mail.example.org",
		},
		{
			name:    "no email",
			message: "what meetings do I have next week?",
			want:    "",
		},
		{
			name:    "at sign without domain",
			message: "ping @alice on the channel",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractEmail(tt.message))
		})
	}
}

func TestChatLogsDetectedEmailAnonymized(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cfg := &config.Config{HTTPAddr: ":0"}
	app := NewAppContext(context.Background(), cfg, &stubResponder{}, tools.NewRegistry(), nil, nil, logger)
	ws := NewWebServer(app)
	t.Cleanup(ws.sessions.Stop)

	rec := postChat(t, ws, ChatRequest{Message: "set up a call with alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := logs.String()
	assert.Contains(t, out, "attendee email detected")
	assert.Contains(t, out, "user_hash=user:")
	assert.Contains(t, out, "user_domain=example.com")
	// The raw address never reaches the log output.
	assert.NotContains(t, out, "alice@example.com")
}
