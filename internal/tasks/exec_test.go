package tasks

import (
	"context"
	"testing"

	"github.com/harrison/dataworks/internal/registry"
)

// The subprocess-backed tasks are only exercised up to their input
// validation here; running uv or npx belongs to integration testing.

func TestGenerateDataRejectsInvalidEmail(t *testing.T) {
	deps := newDeps(t)

	for _, email := range []string{"", "not-an-address", "missing@domain@twice"} {
		_, err := deps.generateData(context.Background(), map[string]any{"user_email": email})
		assertTaskKind(t, err, registry.KindInvalidInput)
	}
}

func TestFormatMarkdownMissingFile(t *testing.T) {
	deps := newDeps(t)
	_, err := deps.formatMarkdown(context.Background(), map[string]any{})
	assertTaskKind(t, err, registry.KindNotFound)
}

func TestFormatMarkdownPathTraversal(t *testing.T) {
	deps := newDeps(t)
	_, err := deps.formatMarkdown(context.Background(), map[string]any{"path": "../outside.md"})
	assertTaskKind(t, err, registry.KindInvalidInput)
}
