package builtin

import (
	"context"
	"fmt"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

// TestCommand checks for a file or directory and reports through its exit code.
type TestCommand struct {
}

// Name returns the command identifier
func (t *TestCommand) Name() string {
	return "test"
}

// Description returns human-readable help text
func (t *TestCommand) Description() string {
	return "Exit 0 when the file (-f) or directory (-d) exists"
}

// Usage returns a usage string for help
func (t *TestCommand) Usage() string {
	return "test -f|-d <path>"
}

func (t *TestCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	file, dir := args.Bool("file"), args.Bool("directory")
	if file == dir {
		return cmd.ExitFailure, fmt.Errorf("%w: exactly one of -f or -d is required", cmd.ErrUsage)
	}

	var exists bool
	if file {
		exists = fs.IsFileExist(ctx, path)
	} else {
		exists = fs.IsDirectoryExist(ctx, path)
	}

	if !exists {
		return cmd.ExitFalse, nil
	}
	return cmd.ExitOK, nil
}

// GetFlags returns the flag set for this command
func (t *TestCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"file": {
				Name:        "file",
				Short:       "f",
				Type:        "bool",
				Description: "Check for a file",
			},
			"directory": {
				Name:        "directory",
				Short:       "d",
				Type:        "bool",
				Description: "Check for a directory",
			},
		},
	}
}
