// Package fs provides the read-only FUSE adapter over the path index.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"bookfs/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrNotFound indicates a virtual path is absent from the index, or
	// the real file behind an indexed entry has vanished.
	ErrNotFound = errors.New("virtual path not found")

	// ErrAccessDenied indicates an attempted mutation of the read-only
	// filesystem, or a real-file open probe failing.
	ErrAccessDenied = errors.New("access denied")

	// ErrIO indicates a read against a real file failed after the file
	// was confirmed indexable.
	ErrIO = errors.New("i/o error")
)

// Error wraps filesystem errors with context about the operation and
// affected virtual path.
type Error struct {
	Op   string // Operation that failed (e.g., "lookup", "read")
	Path string // Affected virtual path
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewFSError creates a new Error with the given operation, path, and underlying error
func NewFSError(op string, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// ToFuseError converts an error to the appropriate FUSE error code.
// This translates our internal errors into the syscall errors FUSE expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrAccessDenied):
		return syscall.EACCES
	case errors.Is(err, ErrIO):
		return syscall.EIO
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpLookup  = "lookup"  // Looking up a path
	OpReadDir = "readdir" // Reading directory contents
	OpOpen    = "open"    // Opening a file
	OpRead    = "read"    // Reading from a file
	OpWrite   = "write"   // Writing to a file (always rejected)
	OpCreate  = "create"  // Creating a new file (always rejected)
	OpMkdir   = "mkdir"   // Creating a new directory (always rejected)
	OpRemove  = "remove"  // Removing a file or directory (always rejected)
	OpRename  = "rename"  // Renaming a file or directory (always rejected)
	OpSetattr = "setattr" // Setting file attributes (always rejected)
	OpGetattr = "getattr" // Getting file attributes
)
