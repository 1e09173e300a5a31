package consul

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

func (cb *ConsulBackend) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	env, err := cb.get(ctx, "head", bucket, key)
	if err != nil {
		return nil, err
	}

	return env.info(key), nil
}

func (cb *ConsulBackend) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	env, err := cb.get(ctx, "get", bucket, key)
	if err != nil {
		return nil, err
	}

	return &backend.Object{
		Info: *env.info(key),
		Body: io.NopCloser(bytes.NewReader(env.Data)),
	}, nil
}

func (cb *ConsulBackend) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	env, value, err := cb.encode(data, opts)
	if err != nil {
		return nil, backend.Failed("put", key, err)
	}

	if len(value) > maxValueSize {
		return nil, backend.TooLarge("put", key, int64(len(value)), maxValueSize)
	}

	pair := &api.KVPair{
		Key:   cb.buildKey(bucket, key),
		Value: value,
	}

	if _, err := cb.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return nil, translate("put", key, err)
	}

	return env.info(key), nil
}

func (cb *ConsulBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := cb.kv.Delete(cb.buildKey(bucket, key), (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return translate("delete", key, err)
	}

	return nil
}

func (cb *ConsulBackend) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	root := cb.bucketPrefix(bucket)

	pairs, _, err := cb.kv.List(root+opts.Prefix, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, translate("list", opts.Prefix, err)
	}

	lister := backend.NewLister(opts)
	for _, pair := range pairs {
		key := strings.TrimPrefix(pair.Key, root)

		env, err := cb.decode(pair.Value)
		if err != nil {
			return nil, backend.Failed("list", key, err)
		}

		if !lister.Add(*env.info(key)) {
			break
		}
	}

	return lister.Result(), nil
}

func (cb *ConsulBackend) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	if _, err := cb.kv.DeleteTree(cb.buildKey(bucket, prefix), (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return translate("delete-prefix", prefix, err)
	}

	return nil
}

func (cb *ConsulBackend) get(ctx context.Context, op, bucket, key string) (*envelope, error) {
	pair, _, err := cb.kv.Get(cb.buildKey(bucket, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, translate(op, key, err)
	}
	if pair == nil {
		return nil, backend.NotFound(op, key)
	}

	env, err := cb.decode(pair.Value)
	if err != nil {
		return nil, backend.Failed(op, key, err)
	}

	return env, nil
}

// translate keeps the HTTP status of failed Consul API calls.
func translate(op, key string, err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &backend.StorageError{
			Op:         op,
			Key:        key,
			StatusCode: statusErr.Code,
			Err:        err,
		}
	}

	return backend.Failed(op, key, err)
}
