package tasks

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/harrison/dataworks/internal/llm"
	"github.com/harrison/dataworks/internal/registry"
)

// extractEmailSender asks the LLM for the sender address in email.txt and
// writes the validated address to email-sender.txt.
func (d Deps) extractEmailSender(ctx context.Context, args map[string]any) (string, error) {
	const task = "extract_email_sender"

	srcPath, err := d.resolvePath(task, "email.txt")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "email-sender.txt")
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				"email.txt does not exist", err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot read email.txt", err)
	}

	prompt := fmt.Sprintf("Extract the sender's email address from the following email message. Respond with only the email address and nothing else.\n\n%s", string(data))
	msg, err := d.Chat.ChatCompletion(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			"sender extraction failed", err)
	}

	sender := strings.TrimSpace(msg.Content)
	if _, err := mail.ParseAddress(sender); err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			fmt.Sprintf("model returned %q, not an email address", sender), err)
	}

	if err := writeOutput(task, dstPath, []byte(sender)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Extracted sender %s from email.txt", sender), nil
}
