package builtin

import (
	"context"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

// RmCommand removes a single file.
type RmCommand struct {
}

func (r *RmCommand) Name() string {
	return "rm"
}

func (r *RmCommand) Description() string {
	return "Remove a file"
}

func (r *RmCommand) Usage() string {
	return "rm <path>"
}

func (r *RmCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	if !fs.DeleteFile(ctx, path) {
		return cmd.ExitFalse, nil
	}
	return cmd.ExitOK, nil
}

func (r *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
