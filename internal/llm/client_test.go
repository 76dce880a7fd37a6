package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harrison/dataworks/internal/config"
)

func testClient(completionsURL, embeddingsURL string, timeout time.Duration) *Client {
	cfg := config.DefaultConfig()
	cfg.CompletionsURL = completionsURL
	cfg.EmbeddingsURL = embeddingsURL
	cfg.Token = "test-token"
	cfg.Timeout = timeout
	return NewClient(cfg)
}

// TestChatCompletionToolCall verifies request shape and tool-call parsing.
func TestChatCompletionToolCall(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"count_weekday","arguments":"{\"weekday\":\"Wednesday\"}"}}]}}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	msg, err := c.ChatCompletion(context.Background(),
		[]Message{{Role: "user", Content: "count the Wednesdays"}},
		[]Tool{{Type: "function", Function: ToolFunction{Name: "count_weekday"}}})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotReq["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v, want auto", gotReq["tool_choice"])
	}
	if gotReq["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", gotReq["model"])
	}

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].Function.Name != "count_weekday" {
		t.Errorf("tool name = %q", msg.ToolCalls[0].Function.Name)
	}
}

// TestChatCompletionTextAnswer verifies the plain-text (no tool) path.
func TestChatCompletionTextAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"I cannot help with that."}}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	msg, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}
	if msg.Content != "I cannot help with that." {
		t.Errorf("content = %q", msg.Content)
	}
	if len(msg.ToolCalls) != 0 {
		t.Errorf("unexpected tool calls: %v", msg.ToolCalls)
	}
}

// TestChatCompletionMissingChoices verifies `{}` is a protocol error, never
// treated as "no tool chosen".
func TestChatCompletionMissingChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("ChatCompletion() should fail for missing choices")
	}
	if !IsProtocolError(err) {
		t.Errorf("error = %T (%v), want ProtocolError", err, err)
	}
}

// TestChatCompletionNonJSONBody verifies a malformed body is a protocol error.
func TestChatCompletionNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if !IsProtocolError(err) {
		t.Errorf("error = %T (%v), want ProtocolError", err, err)
	}
}

// TestChatCompletionServerError verifies HTTP 500 surfaces as unavailable,
// distinct from protocol-shape errors.
func TestChatCompletionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("ChatCompletion() should fail for HTTP 500")
	}
	if !IsUnavailableError(err) {
		t.Errorf("error = %T (%v), want UnavailableError", err, err)
	}
	if IsProtocolError(err) {
		t.Error("HTTP 500 must not classify as ProtocolError")
	}
}

// TestChatCompletionConnectionRefused verifies transport failures classify
// as unavailable.
func TestChatCompletionConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Closed immediately: connection refused.

	c := testClient(srv.URL, srv.URL, time.Second)

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if !IsUnavailableError(err) {
		t.Errorf("error = %T (%v), want UnavailableError", err, err)
	}
}

// TestChatCompletionTimeout verifies deadline expiry classifies as timeout.
func TestChatCompletionTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 20*time.Millisecond)

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("ChatCompletion() should time out")
	}
	if !IsTimeoutError(err) {
		t.Errorf("error = %T (%v), want TimeoutError", err, err)
	}
}

// TestChatCompletionContextCancel verifies caller cancellation aborts the call.
func TestChatCompletionContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL, srv.URL, 5*time.Second)
	if _, err := c.ChatCompletion(ctx, []Message{{Role: "user", Content: "hi"}}, nil); err == nil {
		t.Fatal("ChatCompletion() should fail when context is cancelled")
	}
}

// TestEmbedding verifies the embeddings round trip.
func TestEmbedding(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	vec, err := c.Embedding(context.Background(), "I love apples")
	if err != nil {
		t.Fatalf("Embedding() error = %v", err)
	}

	if gotReq["model"] != "text-embedding-3-small" {
		t.Errorf("model = %v", gotReq["model"])
	}
	if gotReq["input"] != "I love apples" {
		t.Errorf("input = %v", gotReq["input"])
	}
	if len(vec) != 3 || vec[0] != 0.1 || vec[2] != 0.3 {
		t.Errorf("vector = %v", vec)
	}
}

// TestEmbeddingEmptyData verifies missing data is a protocol error.
func TestEmbeddingEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	_, err := c.Embedding(context.Background(), "x")
	if !IsProtocolError(err) {
		t.Errorf("error = %T (%v), want ProtocolError", err, err)
	}
}

// TestChatVision verifies the multimodal request shape: a text part plus an
// image_url part in one user message.
func TestChatVision(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL *struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"4026399336117232"}}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	msg, err := c.ChatVision(context.Background(), "Read the card number.", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("ChatVision() error = %v", err)
	}
	if msg.Content != "4026399336117232" {
		t.Errorf("content = %q", msg.Content)
	}

	if len(gotReq.Messages) != 1 || len(gotReq.Messages[0].Content) != 2 {
		t.Fatalf("messages = %+v, want one message with two parts", gotReq.Messages)
	}
	parts := gotReq.Messages[0].Content
	if parts[0].Type != "text" || parts[0].Text != "Read the card number." {
		t.Errorf("text part = %+v", parts[0])
	}
	if parts[1].Type != "image_url" || parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/png;base64,AAAA" {
		t.Errorf("image part = %+v", parts[1])
	}
}

// TestChatVisionEmptyChoices verifies the protocol contract also holds for
// the multimodal path.
func TestChatVisionEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, 5*time.Second)

	if _, err := c.ChatVision(context.Background(), "p", "data:image/png;base64,AA"); !IsProtocolError(err) {
		t.Errorf("error = %T (%v), want ProtocolError", err, err)
	}
}
