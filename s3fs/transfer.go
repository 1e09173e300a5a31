package s3fs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/data"
	ferrors "github.com/xirelogy/magpie-s3-filesystem/data/errors"
)

var errMissingBody = errors.New("response carried no body")

// fileKey converts path into the key of a file object; the root is no file.
func fileKey(path string) (string, error) {
	key, err := data.ToObjectKey(path)
	if err != nil {
		return "", err
	}

	if key == "" {
		return "", ferrors.InvalidPath(fmt.Errorf("root is not a file"), path)
	}

	return key, nil
}

// ReadFile buffers the whole object together with its stored content type.
func (fs *FileSystem) ReadFile(ctx context.Context, path string) (*data.BinaryContent, error) {
	key, err := fileKey(path)
	if err != nil {
		return nil, err
	}

	if !fs.location.HasBucket() {
		return nil, ferrors.StreamReadFailure(ErrNoBucket, path)
	}

	fs.logger.Debug("get %s/%s", fs.location.Bucket(), key)

	obj, err := fs.client.GetObject(ctx, fs.location.Bucket(), key)
	if err != nil {
		return nil, ferrors.StreamReadFailure(err, path)
	}

	if obj.Body == nil {
		return nil, ferrors.StreamReadFailure(errMissingBody, path)
	}
	defer obj.Body.Close()

	buffer, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, ferrors.StreamReadFailure(err, path)
	}

	return data.NewBinaryContent(buffer, obj.Info.ContentType), nil
}

// WriteFile uploads content, replacing any existing object. The content type
// is the explicit hint or else sniffed from key and payload. Paths ending in
// "/" are marker writes and carry neither content type nor length.
// The transport decides between single and multipart uploads.
func (fs *FileSystem) WriteFile(ctx context.Context, path string, content *data.BinaryContent) error {
	key, err := fileKey(path)
	if err != nil {
		return err
	}

	if !fs.guard() {
		return ferrors.Persistence(ErrMutationDenied, "write", path)
	}

	if !fs.location.HasBucket() {
		return ferrors.Persistence(ErrNoBucket, "write", path)
	}

	if content == nil {
		content = data.NewBinaryContent([]byte{}, "")
	}

	if fs.maxObjectSize > 0 && content.Size() > fs.maxObjectSize {
		return ferrors.Persistence(backend.TooLarge("write", key, content.Size(), fs.maxObjectSize), "write", path)
	}

	contentType := content.ContentType
	if !content.HasContentType() {
		contentType = fs.resolve(key, content.Data)
	}

	opts := backend.PutOptions{
		ContentType:   contentType,
		ContentLength: content.Size(),
	}
	if data.IsDirectoryPath(path) {
		opts = backend.PutOptions{ContentLength: -1}
	}

	fs.logger.Debug("put %s/%s (%d bytes, %s)", fs.location.Bucket(), key, content.Size(), opts.ContentType)

	if _, err := fs.client.PutObject(ctx, fs.location.Bucket(), key, content.Data, opts); err != nil {
		if backend.IsMultipart(err) {
			return ferrors.StreamWriteFailure(err, path)
		}
		return ferrors.Persistence(err, "write", path)
	}

	return nil
}

// DeleteFile removes the object and reports true only once a follow-up
// existence check confirms it is gone. Missing objects report false.
func (fs *FileSystem) DeleteFile(ctx context.Context, path string) bool {
	key, err := fileKey(path)
	if err != nil {
		return false
	}

	if !fs.IsFileExist(ctx, path) {
		return false
	}

	fs.logger.Debug("delete %s/%s", fs.location.Bucket(), key)

	if err := fs.client.DeleteObject(ctx, fs.location.Bucket(), key); err != nil {
		fs.logger.Warn("delete file '%s' failed: %v", path, err)
		return false
	}

	return !fs.IsFileExist(ctx, path)
}
