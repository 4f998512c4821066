// Package extract turns raw fetched documents into a normalized, comparable
// text representation. The output is deterministic for a given input so that
// snapshot hashes compare meaningfully instead of tripping on markup noise.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Mode selects how a fetched document is reduced to comparable text.
type Mode string

const (
	// ModeFull keeps the raw document byte-for-byte, no parsing at all.
	ModeFull Mode = "full"
	// ModeText parses the document as HTML and keeps only the visible text.
	ModeText Mode = "text"
	// ModeSelector keeps the text of elements matching a CSS selector.
	ModeSelector Mode = "selector"
)

// Valid reports whether m is one of the known extraction modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFull, ModeText, ModeSelector:
		return true
	}
	return false
}

// Options configure a single extraction.
type Options struct {
	Mode     Mode
	Selector string
	// Ignore lists CSS selectors whose matches are removed before
	// extraction, in order.
	Ignore []string
}

// Extract produces the normalized text for raw under opts. The second return
// value reports whether any content was observed this cycle: it is false only
// when ModeSelector matched no elements. An empty string with ok=true is a
// valid, comparable result.
func Extract(raw string, opts Options) (string, bool, error) {
	if opts.Mode == ModeFull {
		return raw, true, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", false, fmt.Errorf("parse document: %w", err)
	}

	for _, sel := range opts.Ignore {
		doc.Find(sel).Remove()
	}

	if opts.Mode == ModeSelector && opts.Selector != "" {
		sel := doc.Find(opts.Selector)
		if sel.Length() == 0 {
			return "", false, nil
		}
		parts := make([]string, 0, sel.Length())
		sel.Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, strings.Join(strings.Fields(s.Text()), " "))
		})
		return strings.Join(parts, "\n"), true, nil
	}

	// ModeText. Scripts, styles and other non-content elements contribute
	// no visible text.
	doc.Find("script, style, noscript, iframe").Remove()

	var sb strings.Builder
	for _, n := range doc.Selection.Nodes {
		collectText(n, &sb)
	}
	return normalizeLines(sb.String()), true, nil
}

// collectText walks the DOM emitting each text node on its own line.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// normalizeLines strips every line, drops the empty ones and rejoins with
// newlines.
func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
