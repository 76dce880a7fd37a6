// Package llm is the HTTP client for the upstream chat-completions and
// embeddings services. Both endpoints share one bearer token and one
// timeout; every call is a single attempt with no retry.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harrison/dataworks/internal/config"
)

// Client talks to the chat-completions and embeddings endpoints.
type Client struct {
	completionsURL string
	embeddingsURL  string
	token          string
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	httpClient     *http.Client
}

// NewClient builds a Client from explicit configuration. The config must
// already be validated; the client performs no environment reads of its own.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		completionsURL: cfg.CompletionsURL,
		embeddingsURL:  cfg.EmbeddingsURL,
		token:          cfg.Token,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ChatCompletion sends messages (and an optional tool catalog) to the
// completions endpoint and returns the first choice's message. When tools
// are provided, tool_choice is "auto": the model decides whether to pick
// zero or one tool.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	reqBody := chatRequest{
		Model:    c.chatModel,
		Messages: messages,
	}
	if len(tools) > 0 {
		reqBody.Tools = tools
		reqBody.ToolChoice = "auto"
	}

	body, err := c.post(ctx, c.completionsURL, reqBody)
	if err != nil {
		return nil, err
	}
	return c.decodeChat(body)
}

// ChatVision sends a text prompt together with one inline image and returns
// the first choice's message. Used by extraction tasks that read images.
func (c *Client) ChatVision(ctx context.Context, prompt, imageDataURL string) (*Message, error) {
	reqBody := visionRequest{
		Model: c.chatModel,
		Messages: []visionMessage{{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURL}},
			},
		}},
	}

	body, err := c.post(ctx, c.completionsURL, reqBody)
	if err != nil {
		return nil, err
	}
	return c.decodeChat(body)
}

// decodeChat parses a completions response body into its first message.
func (c *Client) decodeChat(body []byte) (*Message, error) {
	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &ProtocolError{Endpoint: c.completionsURL, Message: "response body is not valid JSON", Err: err}
	}

	// Absence of choices is a protocol error, not an empty result.
	if len(chatResp.Choices) == 0 {
		return nil, &ProtocolError{Endpoint: c.completionsURL, Message: "missing or empty choices in response"}
	}

	msg := chatResp.Choices[0].Message
	return &msg, nil
}

// Embedding fetches the embedding vector for a single input text.
func (c *Client) Embedding(ctx context.Context, input string) ([]float64, error) {
	body, err := c.post(ctx, c.embeddingsURL, embeddingRequest{
		Model: c.embeddingModel,
		Input: input,
	})
	if err != nil {
		return nil, err
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, &ProtocolError{Endpoint: c.embeddingsURL, Message: "response body is not valid JSON", Err: err}
	}

	if len(embResp.Data) == 0 {
		return nil, &ProtocolError{Endpoint: c.embeddingsURL, Message: "missing or empty data in response"}
	}

	return embResp.Data[0].Embedding, nil
}

// post sends a JSON POST with the bearer token and returns the raw 2xx body.
// Transport failures and non-2xx statuses are classified into the upstream
// error taxonomy.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Endpoint: url, Timeout: c.timeout, Err: err}
		}
		return nil, &UnavailableError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Endpoint: url, Timeout: c.timeout, Err: err}
		}
		return nil, &UnavailableError{Endpoint: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UnavailableError{
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
	}

	return body, nil
}

// excerpt truncates an error body for inclusion in error messages.
func excerpt(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
