// Package monitor implements the change-detection engine: fetch a target's
// document, extract comparable text, compare it against the stored snapshot
// and record what happened.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/kanshi/internal/extract"
	"github.com/raysh454/kanshi/internal/interfaces"
	"github.com/raysh454/kanshi/internal/store"
	"github.com/raysh454/kanshi/internal/webclient"
)

// defaultHeaders are sent with every fetch; a target's own headers are
// merged over them and win on conflict.
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// Detector runs checks against targets. It holds no per-target state itself;
// everything durable lives in the store. Checks for the same target must not
// run concurrently (the store is read-modify-write); different targets are
// independent.
type Detector struct {
	store  *store.Store
	wc     webclient.WebClient
	logger interfaces.Logger
}

// NewDetector wires a detector to its storage and web client.
func NewDetector(st *store.Store, wc webclient.WebClient, logger interfaces.Logger) *Detector {
	return &Detector{
		store:  st,
		wc:     wc,
		logger: logger.With(interfaces.Field{Key: "component", Value: "detector"}),
	}
}

// Check runs one check cycle for the target.
//
// Returns (nil, nil) when nothing notifiable happened: first-ever observation
// (snapshot captured, initial_snapshot event recorded), unchanged content, or
// a selector that matched nothing. Returns a ChangeRecord when the content
// hash moved. A *FetchError or *StorageError leaves all stored state exactly
// as it was.
func (d *Detector) Check(ctx context.Context, target *Target) (*ChangeRecord, error) {
	raw, err := d.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	text, observed, err := extract.Extract(raw, target.ExtractOptions())
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", target.Name, err)
	}
	if !observed {
		d.logger.Debug("no content observed",
			interfaces.Field{Key: "target", Value: target.Name},
			interfaces.Field{Key: "selector", Value: target.Selector})
		return nil, nil
	}

	newHash := contentHash(text)

	previous, exists, err := d.store.LoadSnapshot(target.Name)
	if err != nil {
		return nil, &StorageError{Op: "load snapshot", Err: err}
	}

	if !exists {
		if err := d.store.SaveSnapshot(target.Name, text); err != nil {
			return nil, &StorageError{Op: "save snapshot", Err: err}
		}
		ev := store.Event{
			Timestamp: timestamp(),
			Kind:      store.EventInitialSnapshot,
			Hash:      newHash,
		}
		if err := d.store.AppendHistory(target.Name, ev); err != nil {
			return nil, &StorageError{Op: "append history", Err: err}
		}
		d.logger.Info("initial snapshot captured",
			interfaces.Field{Key: "target", Value: target.Name},
			interfaces.Field{Key: "hash", Value: newHash})
		return nil, nil
	}

	oldHash := contentHash(previous)
	if newHash == oldHash {
		d.logger.Debug("no change",
			interfaces.Field{Key: "target", Value: target.Name},
			interfaces.Field{Key: "hash", Value: newHash})
		return nil, nil
	}

	diff, diffLines := unifiedDiff(previous, text)
	checkedAt := timestamp()

	if err := d.store.SaveSnapshot(target.Name, text); err != nil {
		return nil, &StorageError{Op: "save snapshot", Err: err}
	}
	ev := store.Event{
		Timestamp: checkedAt,
		Kind:      store.EventChangeDetected,
		OldHash:   oldHash,
		NewHash:   newHash,
		DiffLines: diffLines,
	}
	if err := d.store.AppendHistory(target.Name, ev); err != nil {
		return nil, &StorageError{Op: "append history", Err: err}
	}

	d.logger.Info("change detected",
		interfaces.Field{Key: "target", Value: target.Name},
		interfaces.Field{Key: "old_hash", Value: oldHash},
		interfaces.Field{Key: "new_hash", Value: newHash},
		interfaces.Field{Key: "diff_lines", Value: diffLines})

	return &ChangeRecord{
		ID:         uuid.New().String(),
		TargetName: target.Name,
		URL:        target.URL,
		Timestamp:  checkedAt,
		OldHash:    oldHash,
		NewHash:    newHash,
		Diff:       diff,
		DiffLines:  diffLines,
		OldContent: previous,
		NewContent: text,
	}, nil
}

// Status returns the derived monitoring status for a target name.
func (d *Detector) Status(name string) (*store.Summary, error) {
	sum, err := d.store.Summarize(name)
	if err != nil {
		return nil, &StorageError{Op: "summarize", Err: err}
	}
	return sum, nil
}

// History returns a target's full change history, oldest first.
func (d *Detector) History(name string) ([]store.Event, error) {
	events, err := d.store.ReadHistory(name)
	if err != nil {
		return nil, &StorageError{Op: "read history", Err: err}
	}
	return events, nil
}

func (d *Detector) fetch(ctx context.Context, target *Target) (string, error) {
	headers := make(http.Header, len(defaultHeaders)+len(target.Headers))
	for k, v := range defaultHeaders {
		headers.Set(k, v)
	}
	for k, v := range target.Headers {
		headers.Set(k, v)
	}

	resp, err := d.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     target.URL,
		Headers: headers,
	})
	if err != nil {
		return "", &FetchError{URL: target.URL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: target.URL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return string(resp.Body), nil
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
