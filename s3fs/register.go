package s3fs

import (
	"context"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/config"
)

// Kind is the registry discriminator of this file system.
const Kind = "s3"

// Register adds the S3 file system to r.
func Register(r *filesystem.Registry) error {
	return r.Register(Kind, func(ctx context.Context, cfg *config.Config) (filesystem.FileSystem, error) {
		fs, err := New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return fs, nil
	})
}

var _ filesystem.FileSystem = (*FileSystem)(nil)
