//go:build !windows

package settings

import (
	"fmt"
	"os"
	"syscall"
)

type fileLock struct {
	f *os.File
}

// lockFile opens path and takes an exclusive flock on its descriptor. The
// flock call blocks until the lock is granted, so contention never surfaces
// as an error here; only open or flock hard failures do.
func lockFile(path string, flag int) (*fileLock, error) {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("open settings file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock: %w", err)
	}

	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	if l.f == nil {
		return nil
	}

	err := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil

	return err
}
