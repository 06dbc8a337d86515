package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kardolus/settings-store/types"
	"go.uber.org/zap"
)

const (
	maxLockRetries = 5
	lockRetryDelay = 100 * time.Millisecond
	tmpSuffix      = ".tmp"
	jsonIndent     = "    "
)

// errLockHeld is returned by the platform lock when another process holds the
// lock and the attempt cannot block. The retry loop in acquire handles it.
var errLockHeld = errors.New("lock held by another process")

//go:generate mockgen -destination=storemocks_test.go -package=settings_test github.com/kardolus/settings-store/settings Store
type Store interface {
	Load(path string) ([]types.Record, error)
	Save(path string, records []types.Record) error
	Update(path, id string, record types.Record) error
	Delete(path, id string) error
}

// Ensure FileIO implements the Store interface
var _ Store = &FileIO{}

// FileIO serializes access to JSON settings files. A single mutex guards all
// operations from this process; an OS advisory lock on the file itself guards
// against other processes. The file path is an argument on every call, so one
// FileIO can manage any number of files (all serialized by the same mutex).
type FileIO struct {
	mu         sync.Mutex
	maxRetries int
	retryDelay time.Duration
}

func New() *FileIO {
	return &FileIO{
		maxRetries: maxLockRetries,
		retryDelay: lockRetryDelay,
	}
}

func (f *FileIO) WithRetryPolicy(retries int, delay time.Duration) *FileIO {
	f.maxRetries = retries
	f.retryDelay = delay
	return f
}

var (
	instance *FileIO
	once     sync.Once
)

// GetInstance returns the process-wide store, constructing it on first use.
func GetInstance() *FileIO {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// Load reads the records at path. A missing file yields an empty list, and so
// does a file whose contents fail to decode; decode failures are logged as
// warnings but deliberately never surfaced, so unreadable data is silently
// discarded.
func (f *FileIO) Load(path string) ([]types.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load(path)
}

// Save writes records to path atomically: the serialized array goes to a
// sibling temp file first, which then replaces path under an exclusive lock.
// Parent directories are created as needed.
func (f *FileIO) Save(path string, records []types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.save(path, records)
}

// Update replaces the first record whose id matches, preserving its position,
// or appends the record when no match exists. Load, mutate and save run as
// one critical section.
func (f *FileIO) Update(path, id string, record types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(path)
	if err != nil {
		return fmt.Errorf("failed to update settings %q: %w", id, err)
	}

	updated := false
	for i, r := range records {
		if r.ID() == id {
			records[i] = record
			updated = true
			break
		}
	}

	if !updated {
		records = append(records, record)
	}

	if err := f.save(path, records); err != nil {
		return fmt.Errorf("failed to update settings %q: %w", id, err)
	}

	return nil
}

// Delete removes every record whose id matches. Deleting an absent id is a
// no-op, not an error.
func (f *FileIO) Delete(path, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(path)
	if err != nil {
		return fmt.Errorf("failed to delete settings %q: %w", id, err)
	}

	remaining := make([]types.Record, 0, len(records))
	for _, r := range records {
		if r.ID() != id {
			remaining = append(remaining, r)
		}
	}

	if err := f.save(path, remaining); err != nil {
		return fmt.Errorf("failed to delete settings %q: %w", id, err)
	}

	return nil
}

func (f *FileIO) load(path string) ([]types.Record, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return []types.Record{}, nil
	}

	lock, err := f.acquire(path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.release(lock)

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
	}

	var records []types.Record
	if err := json.Unmarshal(buf, &records); err != nil {
		zap.S().Warnf("discarding unreadable settings in %s: %s", path, err)
		return []types.Record{}, nil
	}

	if records == nil {
		records = []types.Record{}
	}

	return records, nil
}

func (f *FileIO) save(path string, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to save settings %s: %w", path, err)
	}

	data, err := json.MarshalIndent(records, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("failed to save settings %s: %w", path, err)
	}

	tmpPath := path + tmpSuffix
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save settings %s: %w", path, err)
	}

	// Lock the target, then swap the temp file in. Rename is atomic on the
	// host filesystem, so readers never observe a half-written file.
	lock, err := f.acquire(path, os.O_CREATE|os.O_WRONLY)
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	defer f.release(lock)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings %s: %w", path, err)
	}

	return nil
}

// acquire opens path and takes an exclusive advisory lock on its descriptor,
// retrying on contention or open failure up to the configured ceiling. The
// retry policy lives here; the platform files only know how to lock once.
func (f *FileIO) acquire(path string, flag int) (*fileLock, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(f.retryDelay)
		}

		lock, err := lockFile(path, flag)
		if err == nil {
			return lock, nil
		}
		lastErr = err
	}

	return nil, &LockError{Path: path, Attempts: f.maxRetries, Err: lastErr}
}

// release unlocks and closes. Failures here are warnings only: the descriptor
// is being closed regardless, which releases the lock at the OS level.
func (f *FileIO) release(lock *fileLock) {
	if err := lock.unlock(); err != nil {
		zap.S().Warnf("error releasing file lock: %s", err)
	}
}
