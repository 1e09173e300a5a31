package s3fs

import (
	"context"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/data"
)

// IsFileExist checks for an object under exactly the normalized key.
// Invalid paths and transport failures both report false.
func (fs *FileSystem) IsFileExist(ctx context.Context, path string) bool {
	key, err := data.ToObjectKey(path)
	if err != nil || key == "" {
		return false
	}

	if !fs.location.HasBucket() {
		return false
	}

	fs.logger.Debug("head %s/%s", fs.location.Bucket(), key)

	if _, err := fs.client.HeadObject(ctx, fs.location.Bucket(), key); err != nil {
		if !backend.IsNotFound(err) {
			fs.logger.Warn("head %s failed: %v", key, err)
		}
		return false
	}

	return true
}

// IsDirectoryExist reports whether any object or common prefix lives below path.
// Forbidden and not-found responses are the expected answer for a missing
// prefix; any other failure is logged as warning. Both report false.
func (fs *FileSystem) IsDirectoryExist(ctx context.Context, path string) bool {
	key, err := data.ToObjectKey(path)
	if err != nil {
		return false
	}

	if !fs.location.HasBucket() {
		return false
	}

	prefix := data.WithTrailingDelimiter(key)
	fs.logger.Debug("list %s/%s (max 1)", fs.location.Bucket(), prefix)

	result, err := fs.client.ListObjects(ctx, fs.location.Bucket(), backend.ListOptions{
		Prefix:    prefix,
		Delimiter: data.Delimiter,
		MaxKeys:   1,
	})
	if err != nil {
		if !backend.IsForbidden(err) && !backend.IsNotFound(err) {
			fs.logger.Warn("directory listing for '%s' failed: %v", path, err)
		}
		return false
	}

	return !result.Empty()
}
