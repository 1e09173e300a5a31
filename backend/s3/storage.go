package s3

import (
	"bytes"
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/data/errors"
)

func (sb *S3Backend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	objInfo, err := sb.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate("head", key, err)
	}

	return toObjectInfo(objInfo), nil
}

func (sb *S3Backend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	object, err := sb.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("get", key, err)
	}

	// GetObject is lazy; Stat issues the request and surfaces missing keys
	objInfo, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, translate("get", key, err)
	}

	return &backend.Object{
		Info: *toObjectInfo(objInfo),
		Body: object,
	}, nil
}

func (sb *S3Backend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	// minio-go buffers unknown lengths in maximum-sized parts, so the payload
	// length is always sent even when the caller leaves it unset.
	size := int64(len(data))

	info, err := sb.client.PutObject(ctx, bucket, key, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    sb.partSize,
	})
	if err != nil {
		err = translate("put", key, err)
		if uint64(size) > sb.partSize {
			return nil, &backend.MultipartError{Key: key, Err: err}
		}
		return nil, err
	}

	return &backend.ObjectInfo{
		Key:         key,
		Size:        info.Size,
		ContentType: opts.ContentType,
		ETag:        info.ETag,
		ModifyTime:  info.LastModified,
	}, nil
}

func (sb *S3Backend) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := sb.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translate("delete", key, err)
	}

	return nil
}

func (sb *S3Backend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	// Cancelling stops the listing goroutine once enough keys were seen
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectCh := sb.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Delimiter == "",
		MaxKeys:   opts.MaxKeys,
	})

	result := &backend.ListResult{}
	count := 0

	for objInfo := range objectCh {
		if objInfo.Err != nil {
			return nil, translate("list", opts.Prefix, objInfo.Err)
		}

		if opts.MaxKeys > 0 && count >= opts.MaxKeys {
			result.Truncated = true
			break
		}
		count++

		if isCommonPrefix(objInfo, opts.Delimiter) {
			result.CommonPrefixes = append(result.CommonPrefixes, objInfo.Key)
			continue
		}

		result.Objects = append(result.Objects, *toObjectInfo(objInfo))
	}

	return result, nil
}

func (sb *S3Backend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := &errors.Errors{}
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)

		for objInfo := range sb.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if objInfo.Err != nil {
				errs.Add(translate("list", prefix, objInfo.Err))
				return
			}

			select {
			case objectsCh <- objInfo:
			case <-ctx.Done():
				return
			}
		}
	}()

	for removeErr := range sb.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs.Add(translate("delete", removeErr.ObjectName, removeErr.Err))
	}

	return errs.Errors()
}

func isCommonPrefix(objInfo minio.ObjectInfo, delimiter string) bool {
	return delimiter != "" &&
		strings.HasSuffix(objInfo.Key, delimiter) &&
		objInfo.ETag == "" &&
		objInfo.LastModified.IsZero()
}

func toObjectInfo(objInfo minio.ObjectInfo) *backend.ObjectInfo {
	return &backend.ObjectInfo{
		Key:         objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		ETag:        objInfo.ETag,
		ModifyTime:  objInfo.LastModified,
	}
}

// translate converts minio error responses into storage errors carrying their status.
func translate(op, key string, err error) error {
	if err == nil {
		return nil
	}

	response := minio.ToErrorResponse(err)
	if response.StatusCode == 0 {
		return backend.Failed(op, key, err)
	}

	return &backend.StorageError{
		Op:         op,
		Key:        key,
		StatusCode: response.StatusCode,
		Code:       response.Code,
		Err:        err,
	}
}
