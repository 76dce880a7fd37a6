package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/dataworks/internal/registry"
)

func writeLog(t *testing.T, dir, name, firstLine string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(firstLine+"\nsecond line\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
}

// TestRecentLogLinesOrder verifies most-recent-first ordering of first lines.
func TestRecentLogLinesOrder(t *testing.T) {
	deps := newDeps(t)
	logsDir := filepath.Join(deps.Root, "logs")
	if err := os.Mkdir(logsDir, 0755); err != nil {
		t.Fatal(err)
	}

	base := time.Now().Add(-time.Hour)
	writeLog(t, logsDir, "old.log", "oldest entry", base)
	writeLog(t, logsDir, "mid.log", "middle entry", base.Add(10*time.Minute))
	writeLog(t, logsDir, "new.log", "newest entry", base.Add(20*time.Minute))
	// Non-matching extension is ignored.
	writeLog(t, logsDir, "notes.txt", "not a log", base.Add(30*time.Minute))

	if _, err := deps.recentLogLines(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("recentLogLines() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(deps.Root, "logs-recent.txt"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	want := "newest entry\nmiddle entry\noldest entry\n"
	if string(got) != want {
		t.Errorf("logs-recent.txt = %q, want %q", got, want)
	}
}

// TestRecentLogLinesLimit caps the output at the ten most recent files.
func TestRecentLogLinesLimit(t *testing.T) {
	deps := newDeps(t)
	logsDir := filepath.Join(deps.Root, "logs")
	if err := os.Mkdir(logsDir, 0755); err != nil {
		t.Fatal(err)
	}

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		writeLog(t, logsDir, fmt.Sprintf("app-%02d.log", i), fmt.Sprintf("entry %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	if _, err := deps.recentLogLines(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("recentLogLines() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(deps.Root, "logs-recent.txt"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(got), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[0] != "entry 11" || lines[9] != "entry 2" {
		t.Errorf("lines = %v, want entry 11 down to entry 2", lines)
	}
}

// TestRecentLogLinesEmptyDir writes an empty output rather than failing.
func TestRecentLogLinesEmptyDir(t *testing.T) {
	deps := newDeps(t)
	if err := os.Mkdir(filepath.Join(deps.Root, "logs"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := deps.recentLogLines(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("recentLogLines() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(deps.Root, "logs-recent.txt"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("output = %q, want empty", got)
	}
}

func TestRecentLogLinesMissingDir(t *testing.T) {
	deps := newDeps(t)
	_, err := deps.recentLogLines(context.Background(), map[string]any{})
	assertTaskKind(t, err, registry.KindNotFound)
}
