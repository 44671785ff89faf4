// Package assistant is a thin REST client for the OpenAI Assistants v2
// thread/run protocol.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"concierge/models"
)

const betaHeader = "assistants=v2"

// Client talks to the Assistants API over plain HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a client for the given API key. baseURL is normally the
// public OpenAI endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// AssistantProfile describes the configured assistant, fetched once at
// startup to fail fast on bad credentials.
type AssistantProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
}

// GetAssistant retrieves the assistant's profile.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) (*AssistantProfile, error) {
	var profile AssistantProfile
	if err := c.do(ctx, http.MethodGet, "/assistants/"+assistantID, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateThread opens a fresh conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// PostMessage appends a message to the thread.
func (c *Client) PostMessage(ctx context.Context, threadID, role, text string) error {
	body := map[string]string{"role": role, "content": text}
	return c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil)
}

// StartRun starts an assistant run on the thread and returns the run id.
func (c *Client) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	body := map[string]string{"assistant_id": assistantID}
	var resp runEnvelope
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetRun fetches the run's status together with any tool calls pending in
// requires_action.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (models.RunStatus, []models.ToolCall, error) {
	var resp runEnvelope
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &resp); err != nil {
		return "", nil, err
	}
	return models.RunStatus(resp.Status), resp.pendingToolCalls(), nil
}

// SubmitToolOutputs answers every pending tool call in one batch so the
// run can resume.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []models.ToolOutput) error {
	body := map[string]any{"tool_outputs": outputs}
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// ListMessages returns the thread's messages, most recent first, flattened
// to their first text content.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]models.ThreadMessage, error) {
	var resp struct {
		Data []struct {
			ID      string `json:"id"`
			RunID   string `json:"run_id"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", nil, &resp); err != nil {
		return nil, err
	}

	messages := make([]models.ThreadMessage, 0, len(resp.Data))
	for _, m := range resp.Data {
		msg := models.ThreadMessage{ID: m.ID, RunID: m.RunID, Role: m.Role}
		for _, part := range m.Content {
			if part.Type == "text" {
				msg.Text = part.Text.Value
				break
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// runEnvelope is the wire shape shared by run creation and retrieval.
type runEnvelope struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	RequiredAction *struct {
		SubmitToolOutputs *struct {
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action"`
}

func (r *runEnvelope) pendingToolCalls() []models.ToolCall {
	if r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	raw := r.RequiredAction.SubmitToolOutputs.ToolCalls
	calls := make([]models.ToolCall, 0, len(raw))
	for _, tc := range raw {
		calls = append(calls, models.ToolCall{
			ID:           tc.ID,
			FunctionName: tc.Function.Name,
			Arguments:    tc.Function.Arguments,
		})
	}
	return calls
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal assistant request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build assistant request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("assistant API %s %s: %s", method, path, apiErr.Error.Message)
		}
		return fmt.Errorf("assistant API %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode assistant response: %w", err)
	}
	return nil
}
