package backend

import (
	"context"
	"io"
	"time"
)

// ObjectInfo is the metadata of a single stored object.
type ObjectInfo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	ModifyTime  time.Time `json:"modify_time"`
}

// Object is a streamed object body together with its metadata.
// Body is nil when the store returned no payload; callers must close it otherwise.
type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
}

// PutOptions controls the metadata sent with an upload.
type PutOptions struct {
	// ContentType is omitted from the request when empty
	ContentType string

	// ContentLength is omitted from the request when zero or negative;
	// the client then derives it from the payload itself.
	ContentLength int64
}

// ListOptions describes a prefix listing.
type ListOptions struct {
	// Prefix matches keys starting with this string
	Prefix string `json:"prefix"`

	// Delimiter for hierarchical listing
	// "/" means only immediate children (stops at next slash)
	// "" means recursive (all descendants)
	Delimiter string `json:"delimiter,omitempty"`

	// Max objects plus common prefixes to return (0 = unlimited)
	MaxKeys int `json:"max_keys"`
}

// ListResult is the outcome of a prefix listing.
type ListResult struct {
	Objects        []ObjectInfo
	CommonPrefixes []string

	// Whenever more results exist beyond MaxKeys
	Truncated bool
}

// Empty reports whether the listing matched nothing at all.
func (lr *ListResult) Empty() bool {
	return lr == nil || (len(lr.Objects) == 0 && len(lr.CommonPrefixes) == 0)
}

// ObjectClient is the transport contract consumed by the file system adapter.
// Failures carry an HTTP-like status through *StorageError; failed multipart
// uploads are reported as *MultipartError.
type ObjectClient interface {
	Backend

	// HeadObject checks for an object with exactly this key.
	HeadObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// GetObject streams an object body with its metadata.
	GetObject(ctx context.Context, bucket, key string) (*Object, error)

	// PutObject uploads data, switching to multipart for large payloads.
	PutObject(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (*ObjectInfo, error)

	// DeleteObject removes a single object.
	DeleteObject(ctx context.Context, bucket, key string) error

	// ListObjects lists keys by prefix.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) (*ListResult, error)

	// DeleteMatchingObjects removes every object whose key starts with prefix.
	DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error
}
