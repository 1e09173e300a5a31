package s3fs

import (
	"context"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/data"
)

// CreateDirectory uploads a zero-length marker at the key with exactly one
// trailing slash. Existing markers are overwritten, so the call is idempotent.
// The root always exists and is never uploaded.
func (fs *FileSystem) CreateDirectory(ctx context.Context, path string) bool {
	key, err := data.ToObjectKey(path)
	if err != nil {
		return false
	}

	if !fs.location.HasBucket() {
		return false
	}

	marker := data.WithTrailingDelimiter(key)
	if marker == "" {
		return true
	}

	fs.logger.Debug("put marker %s/%s", fs.location.Bucket(), marker)

	if _, err := fs.client.PutObject(ctx, fs.location.Bucket(), marker, []byte{}, backend.PutOptions{
		ContentLength: -1,
	}); err != nil {
		fs.logger.Warn("create directory '%s' failed: %v", path, err)
		return false
	}

	return true
}

// DeleteDirectory removes every object below path, marker included.
// Missing directories report false without issuing a delete. Deletion is
// always recursive: isEmpty is accepted for interface symmetry only.
// The bucket root is never deleted.
func (fs *FileSystem) DeleteDirectory(ctx context.Context, path string, isEmpty bool) bool {
	key, err := data.ToObjectKey(path)
	if err != nil {
		return false
	}

	prefix := data.WithTrailingDelimiter(key)
	if prefix == "" {
		fs.logger.Warn("refusing to delete the bucket root")
		return false
	}

	if !fs.IsDirectoryExist(ctx, path) {
		return false
	}

	fs.logger.Debug("delete prefix %s/%s", fs.location.Bucket(), prefix)

	if err := fs.client.DeleteMatchingObjects(ctx, fs.location.Bucket(), prefix); err != nil {
		fs.logger.Warn("delete directory '%s' failed: %v", path, err)
		return false
	}

	return true
}
