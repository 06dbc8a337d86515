//go:build windows

package settings

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

type fileLock struct {
	f *os.File
}

// Minimal OVERLAPPED compatible with Windows API.
type overlapped struct {
	Internal     uintptr
	InternalHigh uintptr
	Offset       uint32
	OffsetHigh   uint32
	HEvent       syscall.Handle
}

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = kernel32.NewProc("LockFileEx")
	procUnlockFileEx = kernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusive     = uintptr(0x00000002) // LOCKFILE_EXCLUSIVE_LOCK
	lockfileFailImmediate = uintptr(0x00000001) // LOCKFILE_FAIL_IMMEDIATELY

	errnoLockViolation = syscall.Errno(33) // ERROR_LOCK_VIOLATION
)

// lockFile opens path and takes an exclusive lock on one byte at offset 0.
// Windows has no blocking flock equivalent here, so the attempt fails
// immediately on contention and reports errLockHeld for the caller's retry
// loop.
func lockFile(path string, flag int) (*fileLock, error) {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("open settings file: %w", err)
	}

	h := syscall.Handle(f.Fd())
	var ov overlapped

	r1, _, e1 := procLockFileEx.Call(
		uintptr(h),
		lockfileExclusive|lockfileFailImmediate,
		0, // reserved
		1, // nNumberOfBytesToLockLow
		0, // nNumberOfBytesToLockHigh
		uintptr(unsafe.Pointer(&ov)),
	)
	if r1 == 0 {
		_ = f.Close()
		if e1 == errnoLockViolation {
			return nil, errLockHeld
		}
		if e1 != nil && e1 != syscall.Errno(0) {
			return nil, fmt.Errorf("LockFileEx: %w", e1)
		}
		return nil, fmt.Errorf("LockFileEx: failed")
	}

	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	if l.f == nil {
		return nil
	}

	h := syscall.Handle(l.f.Fd())
	var ov overlapped

	r1, _, e1 := procUnlockFileEx.Call(
		uintptr(h),
		0, // reserved
		1, // nNumberOfBytesToUnlockLow
		0, // nNumberOfBytesToUnlockHigh
		uintptr(unsafe.Pointer(&ov)),
	)

	// Always close even if unlock fails.
	errClose := l.f.Close()
	l.f = nil

	if r1 == 0 {
		if e1 != nil && e1 != syscall.Errno(0) {
			return fmt.Errorf("UnlockFileEx: %w", e1)
		}
		return fmt.Errorf("UnlockFileEx: failed")
	}

	return errClose
}
