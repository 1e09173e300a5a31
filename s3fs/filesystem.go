package s3fs

import (
	"context"
	"errors"
	"fmt"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/config"
	"github.com/xirelogy/magpie-s3-filesystem/data"
	"github.com/xirelogy/magpie-s3-filesystem/log"
)

var (
	// ErrNoBucket is the cause of failures on a location without bucket.
	ErrNoBucket = errors.New("s3fs: no bucket configured")
	// ErrMutationDenied is the cause of writes vetoed by the mutation guard.
	ErrMutationDenied = errors.New("s3fs: mutation denied by guard")
)

// FileSystem maps file and directory operations onto a flat object key space.
// Directories are emulated through zero-length marker objects ending in "/"
// and prefix listings. It holds no mutable state of its own and is safe for
// concurrent use as long as the transport client is.
type FileSystem struct {
	location    Location
	credentials Credentials
	client      backend.ObjectClient

	logger  *log.Logger
	guard   data.MutationGuard
	resolve func(key string, data []byte) string

	// maxObjectSize is the transport limit; zero means unbounded
	maxObjectSize int64
}

type Option func(*FileSystem)

// WithLogger replaces the logger; existence checks report swallowed errors through it.
func WithLogger(logger *log.Logger) Option {
	return func(fs *FileSystem) {
		if logger != nil {
			fs.logger = logger
		}
	}
}

// WithMutationGuard installs the guard consulted before every write.
func WithMutationGuard(guard data.MutationGuard) Option {
	return func(fs *FileSystem) {
		if guard != nil {
			fs.guard = guard
		}
	}
}

// WithMimeSniffer replaces the content sniffer used when writes carry no type.
func WithMimeSniffer(sniffer data.MimeSniffer) Option {
	return func(fs *FileSystem) {
		fs.resolve = data.ResolverFor(sniffer)
	}
}

// WithCredentials records the credentials the transport was built with.
func WithCredentials(credentials Credentials) Option {
	return func(fs *FileSystem) {
		fs.credentials = credentials
	}
}

// NewWithClient creates a file system on top of an already opened client.
func NewWithClient(location Location, client backend.ObjectClient, opts ...Option) *FileSystem {
	fs := &FileSystem{
		location: location,
		client:   client,
		logger:   log.Discard(),
		guard:    data.AllowAll,
		resolve:  data.ResolveMimeType,
	}

	if caps := client.GetCapabilities(); caps != nil {
		fs.maxObjectSize = caps.MaxObjectSize
	}

	for _, opt := range opts {
		opt(fs)
	}

	return fs
}

// New builds the transport selected by cfg, opens it and wraps it.
// A nil cfg means config.Default.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*FileSystem, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	style, err := ParseEndpointStyle(cfg.EndpointStyle)
	if err != nil {
		return nil, err
	}

	location := NewLocationBuilder(cfg.Endpoint).
		WithBucket(cfg.Bucket).
		WithRegion(cfg.Region).
		WithEndpointStyle(style).
		Build()
	credentials := NewCredentials(cfg.Key, cfg.Secret)

	logger, err := cfg.Logger("s3fs")
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, cfg, location, credentials)
	if err != nil {
		return nil, fmt.Errorf("s3fs: failed to create %s transport: %w", cfg.Transport, err)
	}

	if err := client.Open(ctx); err != nil {
		if cerr := client.Close(ctx); cerr != nil {
			logger.Warn("failed to release %s transport: %v", client.Name(), cerr)
		}
		return nil, fmt.Errorf("s3fs: failed to open %s transport: %w", client.Name(), err)
	}

	logger = logger.With("transport", client.Name())
	logger.Debug("opened transport for %s", location)

	opts = append([]Option{WithLogger(logger), WithCredentials(credentials)}, opts...)
	return NewWithClient(location, client, opts...), nil
}

func (fs *FileSystem) Location() Location {
	return fs.location
}

func (fs *FileSystem) Credentials() Credentials {
	return fs.credentials
}

// Client returns the transport underneath this file system.
func (fs *FileSystem) Client() backend.ObjectClient {
	return fs.client
}

// Close closes the transport.
func (fs *FileSystem) Close(ctx context.Context) error {
	return fs.client.Close(ctx)
}
