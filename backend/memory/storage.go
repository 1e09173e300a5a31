package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

type memoryObject struct {
	data        []byte
	contentType string
	etag        string
	modifyTime  time.Time
}

type multipartUpload struct {
	key   string
	parts [][]byte
}

func (mo *memoryObject) info(key string) *backend.ObjectInfo {
	return &backend.ObjectInfo{
		Key:         key,
		Size:        int64(len(mo.data)),
		ContentType: mo.contentType,
		ETag:        mo.etag,
		ModifyTime:  mo.modifyTime,
	}
}

func (mb *MemoryBackend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if mb.closed {
		return nil, backend.Failed("head", key, backend.ErrClosed)
	}

	obj, err := mb.lookup(bucket, key)
	if err != nil {
		return nil, err
	}

	return obj.info(key), nil
}

func (mb *MemoryBackend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if mb.closed {
		return nil, backend.Failed("get", key, backend.ErrClosed)
	}

	obj, err := mb.lookup(bucket, key)
	if err != nil {
		return nil, err
	}

	// Copy so callers never observe later overwrites
	buffer := bytes.Clone(obj.data)
	return &backend.Object{
		Info: *obj.info(key),
		Body: io.NopCloser(bytes.NewReader(buffer)),
	}, nil
}

func (mb *MemoryBackend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	if len(data) > mb.partSize {
		return mb.putMultipart(ctx, bucket, key, data, opts)
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return nil, backend.Failed("put", key, backend.ErrClosed)
	}

	obj := newMemoryObject(bytes.Clone(data), opts)
	mb.bucket(bucket, true).Set(key, obj)

	return obj.info(key), nil
}

func (mb *MemoryBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return backend.Failed("delete", key, backend.ErrClosed)
	}

	if tree := mb.bucket(bucket, false); tree != nil {
		tree.Delete(key)
	}

	return nil
}

func (mb *MemoryBackend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if mb.closed {
		return nil, backend.Failed("list", opts.Prefix, backend.ErrClosed)
	}

	lister := backend.NewLister(opts)
	tree := mb.bucket(bucket, false)
	if tree == nil {
		return lister.Result(), nil
	}

	tree.Ascend(opts.Prefix, func(key string, obj *memoryObject) bool {
		if !strings.HasPrefix(key, opts.Prefix) {
			return false
		}
		return lister.Add(*obj.info(key))
	})

	return lister.Result(), nil
}

func (mb *MemoryBackend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return backend.Failed("delete-prefix", prefix, backend.ErrClosed)
	}

	tree := mb.bucket(bucket, false)
	if tree == nil {
		return nil
	}

	var keys []string
	tree.Ascend(prefix, func(key string, _ *memoryObject) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})

	for _, key := range keys {
		tree.Delete(key)
	}

	return nil
}

// putMultipart stores data in parts of partSize and assembles them on completion.
func (mb *MemoryBackend) putMultipart(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	uploadID := uuid.NewString()

	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return nil, backend.Failed("put", key, backend.ErrClosed)
	}
	mb.uploads[uploadID] = &multipartUpload{key: key}
	mb.mu.Unlock()

	abort := func(err error) error {
		mb.mu.Lock()
		delete(mb.uploads, uploadID)
		mb.mu.Unlock()

		return &backend.MultipartError{Key: key, UploadID: uploadID, Err: err}
	}

	for part, offset := 1, 0; offset < len(data); part, offset = part+1, offset+mb.partSize {
		if err := ctx.Err(); err != nil {
			return nil, abort(err)
		}
		if mb.partFault != nil {
			if err := mb.partFault(uploadID, part); err != nil {
				return nil, abort(fmt.Errorf("part %d: %w", part, err))
			}
		}

		end := min(offset+mb.partSize, len(data))

		mb.mu.Lock()
		upload, exists := mb.uploads[uploadID]
		if exists {
			upload.parts = append(upload.parts, bytes.Clone(data[offset:end]))
		}
		mb.mu.Unlock()

		if !exists {
			return nil, abort(backend.ErrClosed)
		}
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	upload, exists := mb.uploads[uploadID]
	if !exists {
		return nil, &backend.MultipartError{Key: key, UploadID: uploadID, Err: backend.ErrClosed}
	}
	delete(mb.uploads, uploadID)

	obj := newMemoryObject(bytes.Join(upload.parts, nil), opts)
	obj.etag = fmt.Sprintf("%s-%d", obj.etag, len(upload.parts))
	mb.bucket(bucket, true).Set(key, obj)

	return obj.info(key), nil
}

// lookup must be called with lock held.
func (mb *MemoryBackend) lookup(bucket, key string) (*memoryObject, error) {
	tree := mb.bucket(bucket, false)
	if tree == nil {
		return nil, backend.NotFound("head", key)
	}

	obj, exists := tree.Get(key)
	if !exists {
		return nil, backend.NotFound("head", key)
	}

	return obj, nil
}

func newMemoryObject(data []byte, opts backend.PutOptions) *memoryObject {
	return &memoryObject{
		data:        data,
		contentType: opts.ContentType,
		etag:        backend.ComputeETag(data),
		modifyTime:  time.Now(),
	}
}
