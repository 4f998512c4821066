package monitor

import (
	"strings"
	"testing"
)

// TestUnifiedDiff_SingleLineChange verifies the changed-line count for a
// one-line replacement
func TestUnifiedDiff_SingleLineChange(t *testing.T) {
	t.Parallel()

	diff, changed := unifiedDiff("a\nb\nc", "a\nx\nc")
	if changed != 2 {
		t.Fatalf("changed = %d, want 2 (one removal, one addition)\n%s", changed, strings.Join(diff, "\n"))
	}

	if diff[0] != "--- previous" || diff[1] != "+++ current" {
		t.Errorf("missing diff headers: %v", diff[:2])
	}

	var minus, plus []string
	for _, line := range diff[2:] {
		switch {
		case strings.HasPrefix(line, "-"):
			minus = append(minus, line)
		case strings.HasPrefix(line, "+"):
			plus = append(plus, line)
		}
	}
	if len(minus) != 1 || minus[0] != "-b" {
		t.Errorf("removals = %v, want [-b]", minus)
	}
	if len(plus) != 1 || plus[0] != "+x" {
		t.Errorf("additions = %v, want [+x]", plus)
	}
}

// TestUnifiedDiff_FromEmpty verifies all lines count as additions
func TestUnifiedDiff_FromEmpty(t *testing.T) {
	t.Parallel()

	diff, changed := unifiedDiff("", "one\ntwo\nthree")
	if changed < 3 {
		t.Fatalf("changed = %d, want at least 3\n%s", changed, strings.Join(diff, "\n"))
	}
	joined := strings.Join(diff, "\n")
	for _, want := range []string{"+one", "+two", "+three"} {
		if !strings.Contains(joined, want) {
			t.Errorf("diff missing %q:\n%s", want, joined)
		}
	}
}

// TestUnifiedDiff_Identical verifies no changed lines for equal texts
func TestUnifiedDiff_Identical(t *testing.T) {
	t.Parallel()

	_, changed := unifiedDiff("same\ntext", "same\ntext")
	if changed != 0 {
		t.Fatalf("changed = %d, want 0", changed)
	}
}

// TestUnifiedDiff_ContextPreserved verifies unchanged lines appear as context
func TestUnifiedDiff_ContextPreserved(t *testing.T) {
	t.Parallel()

	diff, _ := unifiedDiff("keep\nold\nkeep2", "keep\nnew\nkeep2")
	joined := strings.Join(diff, "\n")
	for _, want := range []string{" keep", " keep2", "-old", "+new"} {
		if !strings.Contains(joined, want) {
			t.Errorf("diff missing %q:\n%s", want, joined)
		}
	}
}
