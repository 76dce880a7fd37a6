package tasks

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"os/exec"
	"time"

	"github.com/harrison/dataworks/internal/registry"
)

// defaultScriptURL is the standard data generator. The script seeds its
// output from the user's email, so every user gets distinct but
// reproducible files.
const defaultScriptURL = "https://raw.githubusercontent.com/sanand0/tools-in-data-science-public/tds-2025-01/project-1/datagen.py"

const generateTimeout = 5 * time.Minute

// generateData runs the generator script with uv, populating the data
// directory with the input files the other tasks consume.
func (d Deps) generateData(ctx context.Context, args map[string]any) (string, error) {
	const task = "generate_data"

	email := stringArg(args, "user_email", "")
	if _, err := mail.ParseAddress(email); err != nil {
		return "", registry.NewTaskError(task, registry.KindInvalidInput,
			fmt.Sprintf("invalid user_email %q", email), err)
	}
	scriptURL := stringArg(args, "script_url", defaultScriptURL)

	if _, err := exec.LookPath("uv"); err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			"uv is not installed", err)
	}

	if err := os.MkdirAll(d.Root, 0755); err != nil {
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot create data directory", err)
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	d.Log.LogInfo(fmt.Sprintf("%s: running generator for %s", task, email))
	cmd := exec.CommandContext(ctx, "uv", "run", scriptURL, email, "--root", d.Root)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			fmt.Sprintf("data generator failed: %s", firstN(out, 512)), err)
	}

	return fmt.Sprintf("Generated data files in %s for %s", d.Root, email), nil
}
