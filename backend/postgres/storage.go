package postgres

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

func (pb *PostgresBackend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	info := &backend.ObjectInfo{Key: key}

	err := pb.pool.QueryRow(ctx,
		"SELECT content_type, size, etag, modify_time FROM s3fs_objects WHERE bucket = $1 AND key = $2",
		bucket, key).Scan(&info.ContentType, &info.Size, &info.ETag, &info.ModifyTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, backend.NotFound("head", key)
	}
	if err != nil {
		return nil, backend.Failed("head", key, err)
	}

	return info, nil
}

func (pb *PostgresBackend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	info := backend.ObjectInfo{Key: key}
	var content []byte

	err := pb.pool.QueryRow(ctx,
		"SELECT content, content_type, size, etag, modify_time FROM s3fs_objects WHERE bucket = $1 AND key = $2",
		bucket, key).Scan(&content, &info.ContentType, &info.Size, &info.ETag, &info.ModifyTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, backend.NotFound("get", key)
	}
	if err != nil {
		return nil, backend.Failed("get", key, err)
	}

	return &backend.Object{
		Info: info,
		Body: io.NopCloser(bytes.NewReader(content)),
	}, nil
}

func (pb *PostgresBackend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	if len(data) > maxByteaSize {
		return nil, backend.TooLarge("put", key, int64(len(data)), maxByteaSize)
	}

	if data == nil {
		data = []byte{}
	}

	info := &backend.ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		ETag:        backend.ComputeETag(data),
		ModifyTime:  time.Now().UTC(),
	}

	_, err := pb.pool.Exec(ctx, `
		INSERT INTO s3fs_objects (bucket, key, content, content_type, size, etag, modify_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (bucket, key) DO UPDATE SET
			content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			size = EXCLUDED.size,
			etag = EXCLUDED.etag,
			modify_time = EXCLUDED.modify_time`,
		bucket, key, data, info.ContentType, info.Size, info.ETag, info.ModifyTime)
	if err != nil {
		return nil, backend.Failed("put", key, err)
	}

	return info, nil
}

func (pb *PostgresBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := pb.pool.Exec(ctx,
		"DELETE FROM s3fs_objects WHERE bucket = $1 AND key = $2",
		bucket, key); err != nil {
		return backend.Failed("delete", key, err)
	}

	return nil
}

func (pb *PostgresBackend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	rows, err := pb.pool.Query(ctx, `
		SELECT key, content_type, size, etag, modify_time FROM s3fs_objects
		WHERE bucket = $1 AND left(key, length($2)) = $2
		ORDER BY key COLLATE "C"`,
		bucket, opts.Prefix)
	if err != nil {
		return nil, backend.Failed("list", opts.Prefix, err)
	}
	defer rows.Close()

	lister := backend.NewLister(opts)
	for rows.Next() {
		var info backend.ObjectInfo
		if err := rows.Scan(&info.Key, &info.ContentType, &info.Size, &info.ETag, &info.ModifyTime); err != nil {
			return nil, backend.Failed("list", opts.Prefix, err)
		}

		if !lister.Add(info) {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, backend.Failed("list", opts.Prefix, err)
	}

	return lister.Result(), nil
}

func (pb *PostgresBackend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	if _, err := pb.pool.Exec(ctx,
		"DELETE FROM s3fs_objects WHERE bucket = $1 AND left(key, length($2)) = $2",
		bucket, prefix); err != nil {
		return backend.Failed("delete-prefix", prefix, err)
	}

	return nil
}
