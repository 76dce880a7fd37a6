package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/harrison/dataworks/internal/fileutil"
	"github.com/harrison/dataworks/internal/registry"
)

// indexMarkdown builds docs/index.json mapping each markdown file's relative
// path to its first H1 title. Files without an H1 are left out of the index.
func (d Deps) indexMarkdown(ctx context.Context, args map[string]any) (string, error) {
	const task = "index_markdown"

	docsDir, err := d.resolvePath(task, "docs")
	if err != nil {
		return "", err
	}

	files, err := fileutil.ScanMarkdown(docsDir)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindNotFound,
			"docs directory is missing or unreadable", err)
	}

	index := make(map[string]string, len(files))
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(docsDir, filepath.FromSlash(rel)))
		if err != nil {
			return "", registry.NewTaskError(task, registry.KindIOFailure,
				fmt.Sprintf("cannot read %s", rel), err)
		}
		if title, ok := firstH1(source); ok {
			index[rel] = title
		}
	}

	out, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot serialize index", err)
	}

	dstPath := filepath.Join(docsDir, "index.json")
	if err := writeOutput(task, dstPath, out); err != nil {
		return "", err
	}
	return fmt.Sprintf("Indexed %d of %d markdown files under docs", len(index), len(files)), nil
}

// firstH1 parses markdown and returns the text of the first level-1 heading.
func firstH1(source []byte) (string, bool) {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var title string
	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = string(n.Text(source))
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(title), found
}
