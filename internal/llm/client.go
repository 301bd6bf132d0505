package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/logging"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
}

// NewClient creates a chat completions client. The base URL should include
// the version prefix (e.g. "https://api.openai.com/v1"). If logger is nil,
// slog.Default() is used.
func NewClient(baseURL, apiKey, model string, temperature float64, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetMetrics enables request metrics. May be left unset.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// CreateChatCompletion submits the conversation plus tool definitions and
// returns the model's reply: either a final assistant message or one
// carrying tool calls.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	start := time.Now()
	msg, err := c.createChatCompletion(ctx, messages, tools, start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordLLMRequest(ctx, c.model, status, time.Since(start))

	return msg, err
}

func (c *Client) createChatCompletion(ctx context.Context, messages []Message, tools []Tool, start time.Time) (*Message, error) {
	logger := logging.WithOperation(c.logger, "chat_completion")

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       tools,
		Temperature: c.temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("completion service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to parse completion response: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("completion service error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	msg := completion.Choices[0].Message
	logger.Debug("completion received",
		slog.String("model", c.model),
		slog.Duration(logging.KeyDuration, time.Since(start)),
		slog.Int("tool_calls", len(msg.ToolCalls)))

	return &msg, nil
}
