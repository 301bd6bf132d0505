package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "sk-test", "gpt-4", 0.1, nil)
}

func TestCreateChatCompletionRequestShape(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}]}`))
	})

	tools := []Tool{{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "list_user_events",
			Description: "List scheduled events",
		},
	}}

	msg, err := client.CreateChatCompletion(context.Background(),
		[]Message{SystemMessage("You are helpful"), UserMessage("hi")}, tools)
	require.NoError(t, err)

	assert.Equal(t, "Hello!", msg.Content)
	assert.Empty(t, msg.ToolCalls)

	assert.Equal(t, "gpt-4", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 0.001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "list_user_events", got.Tools[0].Function.Name)
}

func TestCreateChatCompletionToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "create_calendar_booking", "arguments": "{\"start_time\": \"2025-07-11T14:00:00Z\", \"attendee_email\": \"john@example.com\", \"meeting_title\": \"Sync\"}"}}]
		}, "finish_reason": "tool_calls"}]}`))
	})

	msg, err := client.CreateChatCompletion(context.Background(), []Message{UserMessage("book it")}, nil)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)

	call := msg.ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "create_calendar_booking", call.Function.Name)

	args, err := call.Function.ParseArguments()
	require.NoError(t, err)
	assert.Equal(t, "2025-07-11T14:00:00Z", args["start_time"])
	assert.Equal(t, "john@example.com", args["attendee_email"])
}

func TestCreateChatCompletionErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	})

	_, err := client.CreateChatCompletion(context.Background(), []Message{UserMessage("hi")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCreateChatCompletionNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.CreateChatCompletion(context.Background(), []Message{UserMessage("hi")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		wantLen int
	}{
		{"empty string", "", false, 0},
		{"empty object", "{}", false, 0},
		{"valid args", `{"booking_identifier": "12345"}`, false, 1},
		{"malformed", `{"booking_identifier": `, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := FunctionCall{Name: "x", Arguments: tt.raw}
			args, err := fc.ParseArguments()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, args, tt.wantLen)
		})
	}
}
