package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/harrison/dataworks/internal/registry"
)

// sortContacts sorts the contacts array by the requested fields in priority
// order and writes the result. The sort is stable, so records equal on every
// field keep their input order.
func (d Deps) sortContacts(ctx context.Context, args map[string]any) (string, error) {
	const task = "sort_contacts"

	fields := stringSliceArg(args, "sort_fields", []string{"last_name", "first_name"})

	srcPath, err := d.resolvePath(task, "contacts.json")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "contacts-sorted.json")
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				"contacts.json does not exist", err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot read contacts.json", err)
	}

	var contacts []map[string]any
	if err := json.Unmarshal(data, &contacts); err != nil {
		return "", registry.NewTaskError(task, registry.KindInvalidInput,
			"contacts.json is not a JSON array of objects", err)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		for _, f := range fields {
			a, b := fieldString(contacts[i], f), fieldString(contacts[j], f)
			if a != b {
				return a < b
			}
		}
		return false
	})

	out, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot serialize sorted contacts", err)
	}

	if err := writeOutput(task, dstPath, out); err != nil {
		return "", err
	}
	return fmt.Sprintf("Sorted %d contacts by %s", len(contacts), strings.Join(fields, ", ")), nil
}

// fieldString renders a contact field for comparison. Missing fields compare
// as the empty string.
func fieldString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
