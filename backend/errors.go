package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("backend: object not found")
	ErrBucketNotFound = errors.New("backend: bucket not found")
	ErrClosed         = errors.New("backend: client closed")
	ErrTooLarge       = errors.New("backend: object too large")
)

// StorageError is a failed storage request with its HTTP-like status code.
type StorageError struct {
	Op         string
	Key        string
	StatusCode int
	Code       string
	Err        error
}

func (e *StorageError) Error() string {
	text := fmt.Sprintf("backend: %s '%s' failed with status %d", e.Op, e.Key, e.StatusCode)
	if e.Code != "" {
		text = fmt.Sprintf("%s (%s)", text, e.Code)
	}
	if e.Err != nil {
		text = fmt.Sprintf("%s: %v", text, e.Err)
	}

	return text
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MultipartError reports that a multipart upload failed part-way.
type MultipartError struct {
	Key      string
	UploadID string
	Err      error
}

func (e *MultipartError) Error() string {
	return fmt.Sprintf("backend: multipart upload '%s' of '%s' failed: %v", e.UploadID, e.Key, e.Err)
}

func (e *MultipartError) Unwrap() error {
	return e.Err
}

// NotFound builds the error clients return for a missing key.
func NotFound(op, key string) error {
	return &StorageError{
		Op:         op,
		Key:        key,
		StatusCode: http.StatusNotFound,
		Code:       "NoSuchKey",
		Err:        ErrNotFound,
	}
}

// Failed wraps a transport failure that carries no status of its own.
func Failed(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{
		Op:         op,
		Key:        key,
		StatusCode: http.StatusInternalServerError,
		Code:       "InternalError",
		Err:        err,
	}
}

// StatusCode extracts the status code of err, or 0 when there is none.
func StatusCode(err error) int {
	var se *StorageError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	return 0
}

// IsNotFound reports a 404 status.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsForbidden reports a 403 status.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsMultipart reports whether err originates from a multipart upload.
func IsMultipart(err error) bool {
	var me *MultipartError
	return errors.As(err, &me)
}

// TooLarge builds the error clients return for payloads beyond their limit.
func TooLarge(op, key string, size, limit int64) error {
	return &StorageError{
		Op:         op,
		Key:        key,
		StatusCode: http.StatusRequestEntityTooLarge,
		Code:       "EntityTooLarge",
		Err:        fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, limit),
	}
}
