package filesystem

import (
	"context"

	"github.com/xirelogy/magpie-s3-filesystem/data"
)

// FileSystem is the contract every storage adapter implements.
// Existence checks never fail and report false on any error; creates and deletes
// report success as a boolean; reads and writes return typed errors
// matching the sentinels of the data/errors package.
type FileSystem interface {
	// IsFileExist reports whether an object exists under exactly this path.
	IsFileExist(ctx context.Context, path string) bool

	// ReadFile returns the full object content together with its MIME type.
	ReadFile(ctx context.Context, path string) (*data.BinaryContent, error)

	// WriteFile stores content at path, replacing any existing object.
	WriteFile(ctx context.Context, path string, content *data.BinaryContent) error

	// DeleteFile removes the object at path and confirms its absence.
	DeleteFile(ctx context.Context, path string) bool

	// IsDirectoryExist reports whether anything exists below path.
	IsDirectoryExist(ctx context.Context, path string) bool

	// CreateDirectory stores an empty directory marker at path.
	CreateDirectory(ctx context.Context, path string) bool

	// DeleteDirectory removes path together with everything below it.
	DeleteDirectory(ctx context.Context, path string, isEmpty bool) bool

	// Close releases the underlying transport.
	Close(ctx context.Context) error
}
