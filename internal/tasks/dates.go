package tasks

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harrison/dataworks/internal/registry"
)

// dateLayouts are the formats the generated dates file mixes freely.
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// countWeekday counts the dates in the source file that fall on the given
// day of the week and writes the count to the target file.
func (d Deps) countWeekday(ctx context.Context, args map[string]any) (string, error) {
	const task = "count_weekday"

	name := stringArg(args, "weekday", "")
	day, ok := parseWeekday(name)
	if !ok {
		return "", registry.NewTaskError(task, registry.KindInvalidInput,
			fmt.Sprintf("unknown weekday %q", name), nil)
	}

	source := stringArg(args, "source", "dates.txt")
	target := stringArg(args, "target", fmt.Sprintf("dates-%ss.txt", strings.ToLower(day.String())))

	srcPath, err := d.resolvePath(task, source)
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, target)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", registry.NewTaskError(task, registry.KindNotFound,
				fmt.Sprintf("file %s does not exist", source), err)
		}
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			fmt.Sprintf("cannot read %s", source), err)
	}

	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		t, err := parseDate(line)
		if err != nil {
			return "", registry.NewTaskError(task, registry.KindInvalidInput,
				fmt.Sprintf("unparseable date %q in %s", line, source), err)
		}
		if t.Weekday() == day {
			count++
		}
	}

	if err := writeOutput(task, dstPath, []byte(strconv.Itoa(count))); err != nil {
		return "", err
	}
	return fmt.Sprintf("Counted %d %ss in %s", count, day, source), nil
}

// parseDate tries each supported layout in order.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches no supported format", s)
}

// parseWeekday resolves a day name case-insensitively.
func parseWeekday(name string) (time.Weekday, bool) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(name, day.String()) {
			return day, true
		}
	}
	return time.Sunday, false
}
