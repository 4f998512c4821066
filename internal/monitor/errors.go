package monitor

import "fmt"

// FetchError reports a failed document fetch: transport error, timeout or an
// unexpected HTTP status. The check that produced it mutated no state, so the
// next cycle retries cleanly.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError reports a failed snapshot or history write/read. Distinct
// from FetchError so callers can tell a broken data directory from a flaky
// network.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
