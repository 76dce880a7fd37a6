package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/dataworks/internal/registry"
	"github.com/harrison/dataworks/internal/similarity"
)

// similarComments finds the most similar pair of comments in comments.txt
// and writes the two winning comments to comments-similar.txt, one per line.
func (d Deps) similarComments(ctx context.Context, args map[string]any) (string, error) {
	const task = "similar_comments"

	srcPath, err := d.resolvePath(task, "comments.txt")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "comments-similar.txt")
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				"comments.txt does not exist", err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot read comments.txt", err)
	}

	var comments []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			comments = append(comments, line)
		}
	}

	pair, err := d.Searcher.MostSimilarPair(ctx, comments)
	if err != nil {
		if similarity.IsInsufficientInputError(err) {
			return "", registry.NewTaskError(task, registry.KindInvalidInput,
				"comments.txt needs at least two comments", err)
		}
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			"similarity search failed", err)
	}

	content := pair.TextA + "\n" + pair.TextB + "\n"
	if err := writeOutput(task, dstPath, []byte(content)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Most similar pair (score %.4f) written to comments-similar.txt", pair.Score), nil
}
