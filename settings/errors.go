package settings

import "fmt"

// LockError reports that the advisory lock on a settings file could not be
// acquired within the bounded retry loop.
type LockError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("failed to acquire file lock on %s after %d retries: %s", e.Path, e.Attempts, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}
