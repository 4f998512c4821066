package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/kanshi/internal/monitor"
)

// maxConsoleDiffLines caps the diff preview printed per change.
const maxConsoleDiffLines = 50

// ConsoleNotifier prints change notifications to a writer (stdout in the
// normal wiring).
type ConsoleNotifier struct {
	out      io.Writer
	showDiff bool
}

func NewConsoleNotifier(out io.Writer, showDiff bool) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, showDiff: showDiff}
}

func (c *ConsoleNotifier) Name() string { return "console" }

func (c *ConsoleNotifier) Notify(_ context.Context, change *monitor.ChangeRecord) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(c.out, "\n%s\n", rule)
	fmt.Fprintln(c.out, "CHANGE DETECTED!")
	fmt.Fprintf(c.out, "Target: %s\n", change.TargetName)
	fmt.Fprintf(c.out, "URL: %s\n", change.URL)
	fmt.Fprintf(c.out, "Time: %s\n", change.Timestamp)
	fmt.Fprintf(c.out, "%s\n", rule)

	if c.showDiff && len(change.Diff) > 0 {
		fmt.Fprintln(c.out, "\nDiff:")
		shown := change.Diff
		if len(shown) > maxConsoleDiffLines {
			shown = shown[:maxConsoleDiffLines]
		}
		for _, line := range shown {
			fmt.Fprintln(c.out, strings.TrimRight(line, " \t"))
		}
		if extra := len(change.Diff) - maxConsoleDiffLines; extra > 0 {
			fmt.Fprintf(c.out, "\n... and %d more lines\n", extra)
		}
	}

	fmt.Fprintln(c.out)
	return nil
}
