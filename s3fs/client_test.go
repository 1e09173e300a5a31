package s3fs

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/backend/memory"
	"github.com/xirelogy/magpie-s3-filesystem/log"
)

const testBucket = "test-bucket"

// recordingClient records every request and can fail individual operations.
type recordingClient struct {
	backend.ObjectClient

	mu       sync.Mutex
	calls    []string
	failures map[string]error

	// nilBody makes GetObject return an object without payload
	nilBody bool
	// dropDeletes acknowledges DeleteObject without removing anything
	dropDeletes bool
	// maxObjectSize overrides the advertised object size limit
	maxObjectSize int64
}

func (rc *recordingClient) GetCapabilities() *backend.BackendCapabilities {
	caps := rc.ObjectClient.GetCapabilities()
	if rc.maxObjectSize > 0 {
		caps.MaxObjectSize = rc.maxObjectSize
	}
	return caps
}

func (rc *recordingClient) record(op string) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.calls = append(rc.calls, op)
	return rc.failures[op]
}

func (rc *recordingClient) fail(op string, err error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.failures[op] = err
}

func (rc *recordingClient) Calls() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]string(nil), rc.calls...)
}

func (rc *recordingClient) Count(op string) int {
	count := 0
	for _, call := range rc.Calls() {
		if call == op {
			count++
		}
	}
	return count
}

func (rc *recordingClient) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.calls = nil
}

func (rc *recordingClient) HeadObject(ctx context.Context, bucket, key string) (*backend.ObjectInfo, error) {
	if err := rc.record("head"); err != nil {
		return nil, err
	}
	return rc.ObjectClient.HeadObject(ctx, bucket, key)
}

func (rc *recordingClient) GetObject(ctx context.Context, bucket, key string) (*backend.Object, error) {
	if err := rc.record("get"); err != nil {
		return nil, err
	}
	if rc.nilBody {
		return &backend.Object{Info: backend.ObjectInfo{Key: key}}, nil
	}
	return rc.ObjectClient.GetObject(ctx, bucket, key)
}

func (rc *recordingClient) PutObject(ctx context.Context, bucket, key string, data []byte, opts backend.PutOptions) (*backend.ObjectInfo, error) {
	if err := rc.record("put"); err != nil {
		return nil, err
	}
	return rc.ObjectClient.PutObject(ctx, bucket, key, data, opts)
}

func (rc *recordingClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := rc.record("delete"); err != nil {
		return err
	}
	if rc.dropDeletes {
		return nil
	}
	return rc.ObjectClient.DeleteObject(ctx, bucket, key)
}

func (rc *recordingClient) ListObjects(ctx context.Context, bucket string, opts backend.ListOptions) (*backend.ListResult, error) {
	if err := rc.record("list"); err != nil {
		return nil, err
	}
	return rc.ObjectClient.ListObjects(ctx, bucket, opts)
}

func (rc *recordingClient) DeleteMatchingObjects(ctx context.Context, bucket, prefix string) error {
	if err := rc.record("delete-prefix"); err != nil {
		return err
	}
	return rc.ObjectClient.DeleteMatchingObjects(ctx, bucket, prefix)
}

type testEnv struct {
	fs     *FileSystem
	store  *memory.MemoryBackend
	client *recordingClient
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	return newTestEnvAt(t, NewLocationBuilder("http://localhost:9000").WithBucket(testBucket).Build(), nil, opts...)
}

func newTestEnvAt(t *testing.T, location Location, memOpts []memory.MemoryOption, opts ...Option) *testEnv {
	t.Helper()

	store := memory.NewMemoryBackend(memOpts...)
	require.NoError(t, store.Open(t.Context()))

	client := &recordingClient{
		ObjectClient: store,
		failures:     make(map[string]error),
	}

	logs := &bytes.Buffer{}
	logger := log.NewLoggerWithWriter("s3fs", log.Debug, logs)

	fs := NewWithClient(location, client, append([]Option{WithLogger(logger)}, opts...)...)

	return &testEnv{
		fs:     fs,
		store:  store,
		client: client,
		logs:   logs,
	}
}

func containsWarning(logs string) bool {
	return strings.Contains(logs, log.Warn.String())
}
