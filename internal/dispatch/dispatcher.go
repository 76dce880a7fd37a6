// Package dispatch turns a natural-language instruction into a concrete task
// invocation by delegating the choice to the upstream LLM's tool-calling API,
// then validating and executing the result.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/harrison/dataworks/internal/llm"
	"github.com/harrison/dataworks/internal/logger"
	"github.com/harrison/dataworks/internal/registry"
)

// ChatClient is the slice of the LLM client the dispatcher needs.
type ChatClient interface {
	ChatCompletion(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Message, error)
}

// Result is the outcome of one dispatch. Exactly one variant is populated:
// either the model selected a task (TaskID, Arguments, Output) or it answered
// directly (Text).
type Result struct {
	// RequestID correlates log lines for this dispatch.
	RequestID string `json:"request_id"`

	// TaskID is the executed task, empty if the model answered with text.
	TaskID string `json:"task_id,omitempty"`

	// Arguments are the validated arguments the task ran with.
	Arguments map[string]any `json:"arguments,omitempty"`

	// Output is the task handler's human-readable status string.
	Output string `json:"output,omitempty"`

	// Text is the model's direct answer when no tool was invoked.
	Text string `json:"text,omitempty"`
}

// Invoked reports whether a task was selected and executed.
func (r *Result) Invoked() bool {
	return r.TaskID != ""
}

// Dispatcher routes instructions to registered tasks. It is stateless across
// calls: each Dispatch is independent and safe to run concurrently.
type Dispatcher struct {
	registry *registry.Registry
	client   ChatClient
	log      logger.Logger
}

// NewDispatcher creates a Dispatcher over a populated registry.
func NewDispatcher(reg *registry.Registry, client ChatClient, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{
		registry: reg,
		client:   client,
		log:      log,
	}
}

// Dispatch sends the instruction plus the registry's tool catalog upstream
// with tool_choice left to the model, then either executes the selected task
// or returns the model's text. A single attempt, no retry; every failure
// from the handler or upstream is wrapped with context and rethrown, never
// swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, instruction string) (*Result, error) {
	requestID := uuid.New().String()
	d.log.LogInfo(fmt.Sprintf("dispatch %s: %q", requestID, instruction))

	messages := []llm.Message{{Role: "user", Content: instruction}}
	tools := d.toolCatalog()

	msg, err := d.client.ChatCompletion(ctx, messages, tools)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", requestID, err)
	}

	if len(msg.ToolCalls) == 0 {
		d.log.LogInfo(fmt.Sprintf("dispatch %s: no tool chosen, returning model text", requestID))
		return &Result{RequestID: requestID, Text: msg.Content}, nil
	}

	// One tool per turn; anything beyond the first is ignored.
	if len(msg.ToolCalls) > 1 {
		d.log.LogWarn(fmt.Sprintf("dispatch %s: model returned %d tool calls, honoring the first", requestID, len(msg.ToolCalls)))
	}
	call := msg.ToolCalls[0]
	taskID := call.Function.Name

	desc, err := d.registry.Descriptor(taskID)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: model selected unregistered tool: %w", requestID, err)
	}

	args, err := parseArguments(taskID, call.Function.Arguments)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", requestID, err)
	}

	if err := desc.Parameters.Validate(taskID, args); err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", requestID, err)
	}

	handler, err := d.registry.Handler(taskID)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", requestID, err)
	}

	d.log.LogInfo(fmt.Sprintf("dispatch %s: executing task %s", requestID, taskID))
	output, err := handler(ctx, args)
	if err != nil {
		if registry.IsTaskError(err) {
			return nil, fmt.Errorf("dispatch %s: %w", requestID, err)
		}
		// Handlers normally return typed TaskErrors; anything else is
		// wrapped so the caller always sees the task-failure contract.
		return nil, fmt.Errorf("dispatch %s: %w", requestID,
			registry.NewTaskError(taskID, registry.KindIOFailure, "handler failed", err))
	}

	d.log.LogInfo(fmt.Sprintf("dispatch %s: task %s completed", requestID, taskID))
	return &Result{
		RequestID: requestID,
		TaskID:    taskID,
		Arguments: args,
		Output:    output,
	}, nil
}

// toolCatalog converts the registry's descriptors into the tool-calling API
// shape, in registration order for reproducible prompts.
func (d *Dispatcher) toolCatalog() []llm.Tool {
	descs := d.registry.Descriptors()
	tools := make([]llm.Tool, 0, len(descs))
	for _, desc := range descs {
		tools = append(tools, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        desc.Name,
				Description: desc.Description,
				Parameters:  desc.Parameters,
				Strict:      true,
			},
		})
	}
	return tools
}

// parseArguments decodes the tool call's serialized argument object. An
// empty string means no arguments. A body that is not a JSON object fails
// argument validation; the response envelope itself was well-formed, so this
// is not a protocol error.
func parseArguments(taskID, raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &registry.ArgumentError{
			Task:     taskID,
			Problems: []string{fmt.Sprintf("arguments are not a JSON object: %v", err)},
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
