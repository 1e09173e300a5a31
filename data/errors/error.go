package errors

import (
	"errors"
	"fmt"
	"sync"
)

// Failure kinds surfaced by the file system adapter.
var (
	// ErrInvalidPath is returned for malformed or unsafe paths, before any network call.
	ErrInvalidPath = errors.New("s3fs: invalid path")
	// ErrStreamRead is returned when an object body could not be read.
	ErrStreamRead = errors.New("s3fs: stream read failure")
	// ErrStreamWrite is returned when a multipart upload failed.
	ErrStreamWrite = errors.New("s3fs: stream write failure")
	// ErrPersistence is returned for every other failed write, including guard vetoes.
	ErrPersistence = errors.New("s3fs: persistence failure")
)

// Error carries the operation and path that failed together with its kind.
// It matches its kind through errors.Is and unwraps to the underlying cause.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	text := fmt.Sprintf("%v: %s '%s'", e.Kind, e.Op, e.Path)
	if e.Err != nil {
		text = fmt.Sprintf("%s: %v", text, e.Err)
	}

	return text
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, op, path string, err error) error {
	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Errors collects independent failures, e.g. per-object results of a bulk delete.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
