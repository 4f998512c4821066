package monitor

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// unifiedDiff renders a line-oriented diff between two texts: two header
// lines ("--- previous", "+++ current") followed by every line of both texts
// tagged with "-", "+" or a leading space for context. changed counts only
// the added and removed lines, headers excluded.
func unifiedDiff(old, current string) (diff []string, changed int) {
	dmp := diffmatchpatch.New()
	oldChars, curChars, lineIndex := dmp.DiffLinesToChars(old, current)
	diffs := dmp.DiffMain(oldChars, curChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineIndex)

	diff = []string{"--- previous", "+++ current"}
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			prefix = " "
		}

		lines := splitLines(d.Text)
		if d.Type != diffmatchpatch.DiffEqual {
			changed += len(lines)
		}
		for _, line := range lines {
			diff = append(diff, prefix+line)
		}
	}
	return diff, changed
}

// splitLines splits on newlines without producing a trailing empty line for
// newline-terminated text.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
