package builtin

import (
	"context"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

type MkdirCommand struct {
}

func (m *MkdirCommand) Name() string {
	return "mkdir"
}

func (m *MkdirCommand) Description() string {
	return "Create a directory marker"
}

func (m *MkdirCommand) Usage() string {
	return "mkdir <path>"
}

func (m *MkdirCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	if !fs.CreateDirectory(ctx, path) {
		return cmd.ExitFalse, nil
	}
	return cmd.ExitOK, nil
}

func (m *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
