// Package tasks implements the ten file/data operations the dispatcher can
// route to, and registers them with their tool schemas.
//
// Every handler follows the same contract: it receives schema-validated
// arguments, resolves all paths inside the configured data root, writes its
// output atomically, and fails with a *registry.TaskError carrying a
// machine-readable cause.
package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/dataworks/internal/filelock"
	"github.com/harrison/dataworks/internal/llm"
	"github.com/harrison/dataworks/internal/logger"
	"github.com/harrison/dataworks/internal/registry"
	"github.com/harrison/dataworks/internal/similarity"
)

// ChatClient is the slice of the LLM client the extraction tasks need.
type ChatClient interface {
	ChatCompletion(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Message, error)
	ChatVision(ctx context.Context, prompt, imageDataURL string) (*llm.Message, error)
}

// Deps carries the collaborators shared by all task handlers.
type Deps struct {
	// Root is the data directory all reads and writes are confined to.
	Root string

	// Chat is used by the natural-language extraction tasks.
	Chat ChatClient

	// Searcher runs the similar-comments task.
	Searcher *similarity.Searcher

	// Log receives per-task progress messages.
	Log logger.Logger
}

// RegisterAll registers the ten task handlers in their canonical order.
// The order is fixed so the tool catalog presented to the LLM is identical
// across runs.
func RegisterAll(reg *registry.Registry, deps Deps) error {
	if deps.Log == nil {
		deps.Log = logger.NewNoOpLogger()
	}

	type entry struct {
		name        string
		description string
		params      registry.Schema
		handler     registry.Handler
	}

	entries := []entry{
		{
			name:        "generate_data",
			description: "Installs the data generator prerequisites if required and runs the generator script with a user email, populating the data directory.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"user_email": {Type: "string", Description: "The user's email address to pass to the data generator."},
				"script_url": {Type: "string", Description: "URL of the generator script. Defaults to the standard generator."},
			}, "user_email"),
			handler: deps.generateData,
		},
		{
			name:        "format_markdown",
			description: "Formats a markdown file in the data directory in-place using prettier@3.4.2.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"path": {Type: "string", Description: "File to format, relative to the data directory. Defaults to format.md."},
			}),
			handler: deps.formatMarkdown,
		},
		{
			name:        "count_weekday",
			description: "Counts how many dates in the dates file fall on a given day of the week and writes the count to a file.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"weekday": {
					Type:        "string",
					Description: "Day of the week to count.",
					Enum:        []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
				},
				"source": {Type: "string", Description: "Input file with one date per line. Defaults to dates.txt."},
				"target": {Type: "string", Description: "Output file for the count. Defaults to dates-<weekday>s.txt."},
			}, "weekday"),
			handler: deps.countWeekday,
		},
		{
			name:        "sort_contacts",
			description: "Sorts the JSON array of contacts by last_name then first_name and writes the sorted array to contacts-sorted.json.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"sort_fields": {
					Type:        "array",
					Description: "Fields to sort by, in priority order. Defaults to last_name, first_name.",
					Items:       &registry.Property{Type: "string"},
				},
			}),
			handler: deps.sortContacts,
		},
		{
			name:        "recent_log_lines",
			description: "Writes the first line of the 10 most recent .log files in the logs directory to logs-recent.txt, most recent first.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"extension": {Type: "string", Description: "File extension to include. Defaults to .log."},
			}),
			handler: deps.recentLogLines,
		},
		{
			name:        "index_markdown",
			description: "Finds all Markdown files under docs/, extracts each file's first H1 title, and writes docs/index.json mapping filename to title.",
			params:      registry.ObjectSchema(nil),
			handler:     deps.indexMarkdown,
		},
		{
			name:        "extract_email_sender",
			description: "Extracts the sender's email address from email.txt using the LLM and writes it to email-sender.txt.",
			params:      registry.ObjectSchema(nil),
			handler:     deps.extractEmailSender,
		},
		{
			name:        "extract_card_number",
			description: "Extracts the credit card number from credit-card.png using the LLM and writes it without spaces to credit-card.txt.",
			params:      registry.ObjectSchema(nil),
			handler:     deps.extractCardNumber,
		},
		{
			name:        "similar_comments",
			description: "Finds the most similar pair of comments in comments.txt using embeddings and writes them to comments-similar.txt, one per line.",
			params:      registry.ObjectSchema(nil),
			handler:     deps.similarComments,
		},
		{
			name:        "gold_ticket_sales",
			description: "Computes total sales of Gold tickets from ticket-sales.db and writes the number to ticket-sales-gold.txt.",
			params: registry.ObjectSchema(map[string]registry.Property{
				"ticket_type": {Type: "string", Description: "Ticket type to total. Defaults to Gold."},
			}),
			handler: deps.goldTicketSales,
		},
	}

	for _, e := range entries {
		if err := reg.Register(e.name, e.description, e.params, e.handler); err != nil {
			return fmt.Errorf("failed to register task %s: %w", e.name, err)
		}
	}
	return nil
}

// resolvePath joins rel onto the data root, rejecting any path that escapes
// it. Handlers never touch files outside the root.
func (d Deps) resolvePath(task, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(d.Root, rel))

	rootAbs, err := filepath.Abs(d.Root)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindInvalidInput, "cannot resolve data root", err)
	}
	pathAbs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindInvalidInput, "cannot resolve path", err)
	}

	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", registry.NewTaskError(task, registry.KindInvalidInput,
			fmt.Sprintf("path %q escapes the data directory", rel), nil)
	}
	return pathAbs, nil
}

// writeOutput writes a task's result atomically under a per-file lock.
func writeOutput(task, path string, data []byte) error {
	if err := filelock.LockAndWrite(path, data); err != nil {
		return registry.NewTaskError(task, registry.KindIOFailure,
			fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// stringArg returns args[key] as a string, or fallback when absent.
// Types were already checked by schema validation.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// firstN truncates subprocess output for inclusion in error messages.
func firstN(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// stringSliceArg returns args[key] as a string slice, or fallback when absent.
func stringSliceArg(args map[string]any, key string, fallback []string) []string {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return fallback
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
