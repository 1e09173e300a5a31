package builtin

import (
	"context"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

// RmdirCommand removes a directory together with everything below it.
type RmdirCommand struct {
}

func (r *RmdirCommand) Name() string {
	return "rmdir"
}

func (r *RmdirCommand) Description() string {
	return "Remove a directory and its content"
}

func (r *RmdirCommand) Usage() string {
	return "rmdir [--empty] <path>"
}

func (r *RmdirCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	if !fs.DeleteDirectory(ctx, path, args.Bool("empty")) {
		return cmd.ExitFalse, nil
	}
	return cmd.ExitOK, nil
}

func (r *RmdirCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"empty": {
				Name:        "empty",
				Short:       "e",
				Type:        "bool",
				Description: "Hint that the directory is expected to be empty",
			},
		},
	}
}
