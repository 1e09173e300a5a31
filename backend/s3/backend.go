package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

// DefaultPartSize is used when Options leaves PartSize unset.
const DefaultPartSize = 16 * 1024 * 1024

type Options struct {
	// Endpoint is either a bare host[:port] (TLS assumed) or a http(s) URL
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string

	// PathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint
	PathStyle bool

	// PartSize is the multipart threshold and part size in bytes
	PartSize uint64

	// Bucket is verified during Open when set
	Bucket string
}

type S3Backend struct {
	mu sync.RWMutex

	client   *minio.Client
	partSize uint64
	bucket   string
}

func NewS3Backend(opts Options) (*S3Backend, error) {
	host, secure, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupDNS
	if opts.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, err
	}

	partSize := opts.PartSize
	if partSize == 0 {
		partSize = DefaultPartSize
	}

	return &S3Backend{
		client:   client,
		partSize: partSize,
		bucket:   opts.Bucket,
	}, nil
}

// Returns the identifier name defined for this backend
func (*S3Backend) Name() string {
	return "minio"
}

// Open is part of the lifecycle behavious and gets called when opening this backend.
func (sb *S3Backend) Open(ctx context.Context) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if sb.bucket == "" {
		return nil
	}

	exists, err := sb.client.BucketExists(ctx, sb.bucket)
	if err != nil {
		return translate("open", sb.bucket, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", backend.ErrBucketNotFound, sb.bucket)
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *S3Backend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *S3Backend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityMultipart,
			backend.CapabilityBulkDelete,
			backend.CapabilityPersistent,
		},
		MaxObjectSize: 5 * 1024 * 1024 * 1024 * 1024,
	}
}

func parseEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("s3: endpoint is required")
	}

	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("s3: invalid endpoint '%s': %w", endpoint, err)
	}

	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("s3: unsupported endpoint scheme '%s'", u.Scheme)
	}
}

var _ backend.ObjectClient = (*S3Backend)(nil)
