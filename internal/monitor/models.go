package monitor

import (
	"github.com/raysh454/kanshi/internal/extract"
)

// Target is one monitored endpoint. Name is the unique identity (compared
// case-insensitively) and the sole key into snapshot/history storage.
type Target struct {
	Name     string       `yaml:"name"`
	URL      string       `yaml:"url"`
	Mode     extract.Mode `yaml:"mode"`
	Selector string       `yaml:"selector,omitempty"`

	// Interval overrides the global check interval, in seconds.
	Interval int `yaml:"interval,omitempty"`

	// Ignore lists CSS selectors removed from the document before
	// extraction.
	Ignore []string `yaml:"ignore,omitempty"`

	// Headers are merged over the default request headers; the target's
	// values win on conflict.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ExtractOptions maps the target's extraction settings onto extract.Options.
func (t *Target) ExtractOptions() extract.Options {
	return extract.Options{
		Mode:     t.Mode,
		Selector: t.Selector,
		Ignore:   t.Ignore,
	}
}

// ChangeRecord is the transient result of one check that detected a change.
// It is handed to notification dispatch and then discarded; its durable
// fields live on as a history event plus the new snapshot.
type ChangeRecord struct {
	ID         string   `json:"id"`
	TargetName string   `json:"target"`
	URL        string   `json:"url"`
	Timestamp  string   `json:"timestamp"`
	OldHash    string   `json:"old_hash"`
	NewHash    string   `json:"new_hash"`
	Diff       []string `json:"diff"`
	DiffLines  int      `json:"diff_lines"`
	OldContent string   `json:"-"`
	NewContent string   `json:"-"`
}
