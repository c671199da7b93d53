package domain

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

// Error kinds. Constructors wrap both the kind and the cause with %w, so
// errors.Is matches either through any amount of further wrapping.
var (
	// ErrAuth is fatal for the pass and never retried within it.
	ErrAuth = crerr.New("timing api authentication failed")
	// ErrPageFetch is fatal for the resource being paginated.
	ErrPageFetch = crerr.New("page fetch failed")
	// ErrBracketFetch is non-fatal: the bracket is skipped.
	ErrBracketFetch = crerr.New("bracket fetch failed")
	// ErrCacheWrite is fatal for the pass; prior cache state is untouched.
	ErrCacheWrite = crerr.New("cache write failed")
	// ErrCacheRead is treated as a cache miss.
	ErrCacheRead = crerr.New("cache read failed")
	// ErrSuperseded means the selection epoch moved on while the pass was running.
	ErrSuperseded = crerr.New("sync pass superseded")
	ErrNotFound   = crerr.New("not found")
)

func AuthError(err error) error {
	return fmt.Errorf("%w: %w", ErrAuth, err)
}

func PageFetchError(resource string, page int, err error) error {
	return fmt.Errorf("%w: %s page %d: %w", ErrPageFetch, resource, page, err)
}

func BracketFetchError(bracketID int64, err error) error {
	return fmt.Errorf("%w: bracket %d: %w", ErrBracketFetch, bracketID, err)
}

func CacheWriteError(err error) error {
	return fmt.Errorf("%w: %w", ErrCacheWrite, err)
}

func CacheReadError(err error) error {
	return fmt.Errorf("%w: %w", ErrCacheRead, err)
}

// IsFatal reports whether err aborts a sync pass.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrBracketFetch) && !errors.Is(err, ErrCacheRead)
}

// SyncError is the typed error SyncEvent returns to callers for display.
type SyncError struct {
	EventID int64
	Stage   SyncPhase
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync event %d (%s): %v", e.EventID, e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
