package llm

import "github.com/harrison/dataworks/internal/registry"

// Message is one chat message in a completions exchange.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is the model's selection of a tool with serialized arguments.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the chosen function; Arguments is a JSON object string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is one entry of the tool catalog presented to the model.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries a task's invocation contract in the shape the
// tool-calling API expects.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  registry.Schema `json:"parameters"`
	Strict      bool            `json:"strict"`
}

// ContentPart is one element of a multimodal message body.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image, typically as an inline data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// visionMessage is a request-side message whose content is a list of parts
// rather than a plain string.
type visionMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// visionRequest is the completions request body for multimodal messages.
type visionRequest struct {
	Model    string          `json:"model"`
	Messages []visionMessage `json:"messages"`
}

// chatRequest is the completions request body.
type chatRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

// chatChoice is one candidate completion.
type chatChoice struct {
	Message Message `json:"message"`
}

// chatResponse is the completions response body.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// embeddingRequest is the embeddings request body. Input is a single string;
// the similarity layer issues one call per item.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingDatum is one embedding result entry.
type embeddingDatum struct {
	Embedding []float64 `json:"embedding"`
}

// embeddingResponse is the embeddings response body.
type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}
