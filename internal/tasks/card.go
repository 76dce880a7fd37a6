package tasks

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/dataworks/internal/registry"
)

// extractCardNumber asks the LLM to read the card number out of
// credit-card.png and writes the digits, without separators, to
// credit-card.txt.
func (d Deps) extractCardNumber(ctx context.Context, args map[string]any) (string, error) {
	const task = "extract_card_number"

	srcPath, err := d.resolvePath(task, "credit-card.png")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "credit-card.txt")
	if err != nil {
		return "", err
	}

	image, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				"credit-card.png does not exist", err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot read credit-card.png", err)
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	prompt := "Extract the credit card number shown in this image. Respond with only the digits, no spaces or punctuation."

	msg, err := d.Chat.ChatVision(ctx, prompt, dataURL)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			"card number extraction failed", err)
	}

	digits := keepDigits(msg.Content)
	if len(digits) < 12 || len(digits) > 19 {
		return "", registry.NewTaskError(task, registry.KindExternalServiceFailure,
			fmt.Sprintf("model returned %q, not a card number", strings.TrimSpace(msg.Content)), nil)
	}

	if err := writeOutput(task, dstPath, []byte(digits)); err != nil {
		return "", err
	}
	return "Extracted card number into credit-card.txt", nil
}

// keepDigits strips everything except ASCII digits, tolerating the spacing
// and punctuation models tend to echo from the image.
func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
