package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Event kinds recorded in a target's history log.
const (
	EventInitialSnapshot = "initial_snapshot"
	EventChangeDetected  = "change_detected"
)

// Event is one immutable entry in a target's history log. Hash is set for
// initial_snapshot events; OldHash/NewHash/DiffLines for change_detected.
type Event struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"event"`
	Hash      string `json:"hash,omitempty"`
	OldHash   string `json:"old_hash,omitempty"`
	NewHash   string `json:"new_hash,omitempty"`
	DiffLines int    `json:"diff_lines,omitempty"`
}

// Summary is the derived monitoring status for one target.
type Summary struct {
	HasSnapshot  bool    `json:"has_snapshot"`
	TotalChanges int     `json:"total_changes"`
	LastCheck    string  `json:"last_check,omitempty"`
	Recent       []Event `json:"recent_events"`
}

// ReadHistory returns the target's events in insertion order, or an empty
// slice when no history exists.
func (s *Store) ReadHistory(name string) ([]Event, error) {
	data, err := os.ReadFile(s.historyPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return events, nil
}

// AppendHistory appends ev to the target's log. This is a read-modify-write
// of the whole file; see the package comment for the serialization contract.
func (s *Store) AppendHistory(name string, ev Event) error {
	events, err := s.ReadHistory(name)
	if err != nil {
		return err
	}
	events = append(events, ev)

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := atomicWriteFile(s.historyPath(name), data, 0644); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Summarize scans the target's full log and snapshot presence into a Summary.
// Recent holds the last 10 events, oldest first.
func (s *Store) Summarize(name string) (*Summary, error) {
	events, err := s.ReadHistory(name)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		HasSnapshot: s.HasSnapshot(name),
		Recent:      events,
	}
	for _, ev := range events {
		if ev.Kind == EventChangeDetected {
			sum.TotalChanges++
		}
	}
	if len(events) > 0 {
		sum.LastCheck = events[len(events)-1].Timestamp
	}
	if len(sum.Recent) > 10 {
		sum.Recent = sum.Recent[len(sum.Recent)-10:]
	}
	return sum, nil
}
