package awssdk

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
	ferrors "github.com/xirelogy/magpie-s3-filesystem/data/errors"
	"golang.org/x/sync/errgroup"
)

func (ab *AWSBackend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	head, err := ab.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate("head", key, err)
	}

	return &backend.ObjectInfo{
		Key:         key,
		Size:        aws.ToInt64(head.ContentLength),
		ContentType: aws.ToString(head.ContentType),
		ETag:        etag(head.ETag),
		ModifyTime:  aws.ToTime(head.LastModified),
	}, nil
}

func (ab *AWSBackend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	resp, err := ab.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate("get", key, err)
	}

	return &backend.Object{
		Info: backend.ObjectInfo{
			Key:         key,
			Size:        aws.ToInt64(resp.ContentLength),
			ContentType: aws.ToString(resp.ContentType),
			ETag:        etag(resp.ETag),
			ModifyTime:  aws.ToTime(resp.LastModified),
		},
		Body: resp.Body,
	}, nil
}

func (ab *AWSBackend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	// Zero means unset; the SDK measures the seekable body itself
	if opts.ContentLength > 0 {
		input.ContentLength = aws.Int64(opts.ContentLength)
	}

	// The uploader picks a single PutObject or a multipart upload by PartSize
	out, err := ab.uploader.Upload(ctx, input)
	if err != nil {
		var failure manager.MultiUploadFailure
		if errors.As(err, &failure) {
			return nil, &backend.MultipartError{
				Key:      key,
				UploadID: failure.UploadID(),
				Err:      translate("put", key, err),
			}
		}
		return nil, translate("put", key, err)
	}

	return &backend.ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		ETag:        etag(out.ETag),
	}, nil
}

func (ab *AWSBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := ab.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return translate("delete", key, err)
	}

	return nil
}

func (ab *AWSBackend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(opts.Prefix),
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}

	result := &backend.ListResult{}

	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(opts.MaxKeys))

		page, err := ab.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, translate("list", opts.Prefix, err)
		}

		appendPage(result, page)
		result.Truncated = aws.ToBool(page.IsTruncated)
		return result, nil
	}

	paginator := s3.NewListObjectsV2Paginator(ab.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translate("list", opts.Prefix, err)
		}
		appendPage(result, page)
	}

	return result, nil
}

// DeleteMatchingObjects pages through the prefix and removes every page with
// one DeleteObjects request. Requests run concurrently, paced by the limiter.
func (ab *AWSBackend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	errs := &ferrors.Errors{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)

	paginator := s3.NewListObjectsV2Paginator(ab.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(deleteBatchSize),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(gctx)
		if err != nil {
			errs.Add(translate("list", prefix, err))
			break
		}
		if len(page.Contents) == 0 {
			continue
		}

		identifiers := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: obj.Key})
		}

		g.Go(func() error {
			if err := ab.limiter.Wait(gctx); err != nil {
				return err
			}

			out, err := ab.client.DeleteObjects(gctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(bucket),
				Delete: &types.Delete{
					Objects: identifiers,
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return translate("delete", prefix, err)
			}

			for _, failed := range out.Errors {
				errs.Add(&backend.StorageError{
					Op:         "delete",
					Key:        aws.ToString(failed.Key),
					StatusCode: http.StatusInternalServerError,
					Code:       aws.ToString(failed.Code),
					Err:        errors.New(aws.ToString(failed.Message)),
				})
			}
			return nil
		})
	}

	errs.Add(g.Wait())
	return errs.Errors()
}

func appendPage(result *backend.ListResult, page *s3.ListObjectsV2Output) {
	for _, obj := range page.Contents {
		result.Objects = append(result.Objects, backend.ObjectInfo{
			Key:        aws.ToString(obj.Key),
			Size:       aws.ToInt64(obj.Size),
			ETag:       etag(obj.ETag),
			ModifyTime: aws.ToTime(obj.LastModified),
		})
	}
	for _, cp := range page.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(cp.Prefix))
	}
}

// etag strips the quotes S3 puts around entity tags.
func etag(value *string) string {
	return strings.Trim(aws.ToString(value), `"`)
}

// translate extracts the HTTP status and API error code from SDK errors.
func translate(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var response interface{ HTTPStatusCode() int }
	if !errors.As(err, &response) {
		return backend.Failed(op, key, err)
	}

	se := &backend.StorageError{
		Op:         op,
		Key:        key,
		StatusCode: response.HTTPStatusCode(),
		Err:        err,
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		se.Code = apiErr.ErrorCode()
	}

	return se
}
