package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind separates the two ways a directory read can end badly.
type Kind int

const (
	KindIO Kind = iota + 1
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IOKind is the OS-level classification carried by an I/O error.
type IOKind string

const (
	IOPermission    IOKind = "permission denied"
	IONotFound      IOKind = "not found"
	IOTooManyOpen   IOKind = "too many open files"
	IONotDirectory  IOKind = "not a directory"
	IODepthExceeded IOKind = "depth exceeded"
	IOOther         IOKind = "other"
)

var (
	ErrCancelled     = errors.New("operation cancelled")
	ErrDepthExceeded = errors.New("maximum scan depth exceeded")
)

// ReadError is attached to a Directory whose own read did not complete.
type ReadError struct {
	Kind Kind
	IO   IOKind // empty for cancellation
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Kind == KindCancelled {
		return fmt.Sprintf("%s: %s", ErrCancelled, e.Path)
	}
	if e.Err == nil {
		return fmt.Sprintf("I/O error (%s): %s", e.IO, e.Path)
	}
	return fmt.Sprintf("I/O error (%s): %v", e.IO, e.Err)
}

func (e *ReadError) Unwrap() error {
	if e.Kind == KindCancelled {
		return ErrCancelled
	}
	return e.Err
}

// NewIOError classifies err and records it against path.
func NewIOError(path string, err error) *ReadError {
	return &ReadError{
		Kind: KindIO,
		IO:   ClassifyIO(err),
		Path: path,
		Err:  err,
	}
}

func NewCancelled(path string) *ReadError {
	return &ReadError{Kind: KindCancelled, Path: path}
}

// ClassifyIO maps an OS error onto an IOKind.
func ClassifyIO(err error) IOKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDepthExceeded):
		return IODepthExceeded
	case errors.Is(err, fs.ErrPermission):
		return IOPermission
	case errors.Is(err, fs.ErrNotExist):
		return IONotFound
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return IOTooManyOpen
	case errors.Is(err, syscall.ENOTDIR):
		return IONotDirectory
	default:
		return IOOther
	}
}

// Describe returns a short hint for showing a node error to a user.
func Describe(err *ReadError) string {
	if err == nil {
		return ""
	}
	if err.Kind == KindCancelled {
		return "scan cancelled before this directory finished"
	}
	switch err.IO {
	case IOPermission:
		return "access denied; run with elevated privileges to measure this directory"
	case IONotFound:
		return "removed while the scan was running"
	case IOTooManyOpen:
		return "out of file handles; raise the open file limit and rescan"
	case IONotDirectory:
		return "no longer a directory"
	case IODepthExceeded:
		return "nested too deeply; raise scan.max_depth to descend further"
	default:
		return "could not be read"
	}
}
