package tasks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/harrison/dataworks/internal/registry"
)

const formatTimeout = 2 * time.Minute

// formatMarkdown reformats a markdown file with a pinned prettier version.
// Prettier runs in stdin/stdout mode so the result lands on disk through the
// same atomic write path as every other task output.
func (d Deps) formatMarkdown(ctx context.Context, args map[string]any) (string, error) {
	const task = "format_markdown"

	rel := stringArg(args, "path", "format.md")
	path, err := d.resolvePath(task, rel)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				fmt.Sprintf("file %s does not exist", rel), err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			fmt.Sprintf("cannot read %s", rel), err)
	}

	if _, err := exec.LookPath("npx"); err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			"npx is not installed", err)
	}

	ctx, cancel := context.WithTimeout(ctx, formatTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "npx", "--yes", "prettier@3.4.2", "--stdin-filepath", path)
	cmd.Stdin = bytes.NewReader(content)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			fmt.Sprintf("prettier failed: %s", firstN(stderr.Bytes(), 512)), err)
	}

	if err := writeOutput(task, path, stdout.Bytes()); err != nil {
		return "", err
	}
	return fmt.Sprintf("Formatted %s with prettier", rel), nil
}
