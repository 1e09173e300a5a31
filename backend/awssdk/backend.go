package awssdk

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"golang.org/x/time/rate"
)

const (
	// DefaultPartSize is used when Options leaves PartSize unset.
	DefaultPartSize = 16 * 1024 * 1024

	// deleteBatchSize is the DeleteObjects request limit.
	deleteBatchSize = 1000

	// deleteBatchRate caps DeleteObjects requests per second.
	deleteBatchRate = 10

	deleteConcurrency = 4
)

// Client is the subset of the S3 API used by this backend.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient

	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type Options struct {
	// Endpoint overrides the AWS endpoint; "https://" is assumed without a scheme
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	PathStyle bool

	// PartSize is the multipart threshold and part size in bytes
	PartSize int64

	// Bucket is verified during Open when set
	Bucket string
}

type AWSBackend struct {
	client   Client
	uploader *manager.Uploader
	limiter  *rate.Limiter
	partSize int64
	bucket   string
}

// NewAWSBackend loads the default AWS configuration with static credentials.
func NewAWSBackend(ctx context.Context, opts Options) (*AWSBackend, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("awssdk: failed to load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(withScheme(opts.Endpoint))
		}
	})

	return NewAWSBackendWithClient(client, opts), nil
}

// NewAWSBackendWithClient wraps an existing client.
func NewAWSBackendWithClient(client Client, opts Options) *AWSBackend {
	partSize := opts.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}

	return &AWSBackend{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = partSize
			u.LeavePartsOnError = false
		}),
		limiter:  rate.NewLimiter(rate.Limit(deleteBatchRate), 1),
		partSize: partSize,
		bucket:   opts.Bucket,
	}
}

// Returns the identifier name defined for this backend
func (*AWSBackend) Name() string {
	return "aws"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (ab *AWSBackend) Open(ctx context.Context) error {
	if ab.bucket == "" {
		return nil
	}

	if _, err := ab.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(ab.bucket),
	}); err != nil {
		err = translate("open", ab.bucket, err)
		if backend.IsNotFound(err) {
			return fmt.Errorf("%w: %s", backend.ErrBucketNotFound, ab.bucket)
		}
		return err
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (ab *AWSBackend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (ab *AWSBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityMultipart,
			backend.CapabilityBulkDelete,
			backend.CapabilityPersistent,
		},
		MaxObjectSize: int64(manager.MaxUploadParts) * ab.partSize,
	}
}

func withScheme(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}

	return "https://" + endpoint
}

var _ backend.ObjectClient = (*AWSBackend)(nil)
