package s3fs

import (
	"context"
	"fmt"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/backend/awssdk"
	"github.com/xirelogy/magpie-s3-filesystem/backend/consul"
	"github.com/xirelogy/magpie-s3-filesystem/backend/memory"
	"github.com/xirelogy/magpie-s3-filesystem/backend/postgres"
	miniobackend "github.com/xirelogy/magpie-s3-filesystem/backend/s3"
	"github.com/xirelogy/magpie-s3-filesystem/backend/sqlite"
	"github.com/xirelogy/magpie-s3-filesystem/config"
)

type transportFactory func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error)

var transports = map[string]transportFactory{
	config.TransportMinio: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return miniobackend.NewS3Backend(miniobackend.Options{
			Endpoint:  location.Endpoint(),
			AccessKey: credentials.Key(),
			SecretKey: credentials.Secret(),
			Region:    location.Region(),
			PathStyle: location.PathStyle(),
			PartSize:  uint64(cfg.PartSize),
			Bucket:    location.Bucket(),
		})
	},
	config.TransportAWS: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return awssdk.NewAWSBackend(ctx, awssdk.Options{
			Endpoint:  location.Endpoint(),
			AccessKey: credentials.Key(),
			SecretKey: credentials.Secret(),
			Region:    location.Region(),
			PathStyle: location.PathStyle(),
			PartSize:  cfg.PartSize,
			Bucket:    location.Bucket(),
		})
	},
	config.TransportMemory: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return memory.NewMemoryBackend(memory.WithPartSize(int(cfg.PartSize))), nil
	},
	config.TransportSQLite: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return sqlite.NewSQLiteBackend(location.Endpoint())
	},
	config.TransportPostgres: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return postgres.NewPostgresBackend(ctx, location.Endpoint())
	},
	config.TransportConsul: func(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
		return consul.NewConsulBackend(&consul.ConsulBackendConfig{
			Address: location.Endpoint(),
			Token:   credentials.Secret(),
		})
	},
}

func newClient(ctx context.Context, cfg *config.Config, location Location, credentials Credentials) (backend.ObjectClient, error) {
	factory, exists := transports[cfg.Transport]
	if !exists {
		return nil, fmt.Errorf("unknown transport '%s'", cfg.Transport)
	}

	return factory(ctx, cfg, location, credentials)
}
