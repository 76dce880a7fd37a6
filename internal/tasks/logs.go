package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/dataworks/internal/fileutil"
	"github.com/harrison/dataworks/internal/registry"
)

// recentLogLines writes the first line of the 10 most recently modified log
// files to logs-recent.txt, most recent first.
func (d Deps) recentLogLines(ctx context.Context, args map[string]any) (string, error) {
	const task = "recent_log_lines"
	const limit = 10

	ext := stringArg(args, "extension", ".log")

	logsDir, err := d.resolvePath(task, "logs")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "logs-recent.txt")
	if err != nil {
		return "", err
	}

	files, err := fileutil.RecentFiles(logsDir, ext, limit)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindNotFound,
			"logs directory is missing or unreadable", err)
	}

	lines := make([]string, 0, len(files))
	for _, f := range files {
		line, err := fileutil.FirstLine(f)
		if err != nil {
			return "", registry.NewTaskError(task, registry.KindIOFailure,
				fmt.Sprintf("cannot read %s", filepath.Base(f)), err)
		}
		lines = append(lines, line)
	}

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := writeOutput(task, dstPath, []byte(content)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Wrote first lines of the %d most recent %s files", len(files), ext), nil
}
