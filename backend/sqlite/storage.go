package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

func (sb *SQLiteBackend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	info := &backend.ObjectInfo{Key: key}
	var modifyTime int64

	err := sb.db.QueryRowContext(ctx,
		"SELECT content_type, size, etag, modify_time FROM s3fs_objects WHERE bucket = ? AND key = ?",
		bucket, key).Scan(&info.ContentType, &info.Size, &info.ETag, &modifyTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NotFound("head", key)
	}
	if err != nil {
		return nil, backend.Failed("head", key, err)
	}

	info.ModifyTime = time.Unix(0, modifyTime)
	return info, nil
}

func (sb *SQLiteBackend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	info := backend.ObjectInfo{Key: key}
	var content []byte
	var modifyTime int64

	err := sb.db.QueryRowContext(ctx,
		"SELECT content, content_type, size, etag, modify_time FROM s3fs_objects WHERE bucket = ? AND key = ?",
		bucket, key).Scan(&content, &info.ContentType, &info.Size, &info.ETag, &modifyTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NotFound("get", key)
	}
	if err != nil {
		return nil, backend.Failed("get", key, err)
	}

	info.ModifyTime = time.Unix(0, modifyTime)
	return &backend.Object{
		Info: info,
		Body: io.NopCloser(bytes.NewReader(content)),
	}, nil
}

func (sb *SQLiteBackend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	if len(data) > maxBlobSize {
		return nil, backend.TooLarge("put", key, int64(len(data)), maxBlobSize)
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	if data == nil {
		data = []byte{}
	}

	info := &backend.ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		ETag:        backend.ComputeETag(data),
		ModifyTime:  time.Now(),
	}

	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO s3fs_objects (bucket, key, content, content_type, size, etag, modify_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			content = excluded.content,
			content_type = excluded.content_type,
			size = excluded.size,
			etag = excluded.etag,
			modify_time = excluded.modify_time`,
		bucket, key, data, info.ContentType, info.Size, info.ETag, info.ModifyTime.UnixNano())
	if err != nil {
		return nil, backend.Failed("put", key, err)
	}

	return info, nil
}

func (sb *SQLiteBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, err := sb.db.ExecContext(ctx,
		"DELETE FROM s3fs_objects WHERE bucket = ? AND key = ?",
		bucket, key); err != nil {
		return backend.Failed("delete", key, err)
	}

	return nil
}

func (sb *SQLiteBackend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	rows, err := sb.db.QueryContext(ctx, `
		SELECT key, content_type, size, etag, modify_time FROM s3fs_objects
		WHERE bucket = ?1 AND substr(key, 1, length(?2)) = ?2
		ORDER BY key`,
		bucket, opts.Prefix)
	if err != nil {
		return nil, backend.Failed("list", opts.Prefix, err)
	}
	defer rows.Close()

	lister := backend.NewLister(opts)
	for rows.Next() {
		var info backend.ObjectInfo
		var modifyTime int64

		if err := rows.Scan(&info.Key, &info.ContentType, &info.Size, &info.ETag, &modifyTime); err != nil {
			return nil, backend.Failed("list", opts.Prefix, err)
		}

		info.ModifyTime = time.Unix(0, modifyTime)
		if !lister.Add(info) {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, backend.Failed("list", opts.Prefix, err)
	}

	return lister.Result(), nil
}

func (sb *SQLiteBackend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, err := sb.db.ExecContext(ctx,
		"DELETE FROM s3fs_objects WHERE bucket = ?1 AND substr(key, 1, length(?2)) = ?2",
		bucket, prefix); err != nil {
		return backend.Failed("delete-prefix", prefix, err)
	}

	return nil
}
