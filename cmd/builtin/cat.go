package builtin

import (
	"context"
	"fmt"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

// CatCommand prints the content of a file, or its content type and size with --stat.
type CatCommand struct {
}

func (c *CatCommand) Name() string {
	return "cat"
}

func (c *CatCommand) Description() string {
	return "Print the content of a file"
}

func (c *CatCommand) Usage() string {
	return "cat [--stat] <path>"
}

func (c *CatCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	content, err := fs.ReadFile(ctx, path)
	if err != nil {
		return cmd.ExitFailure, err
	}

	if args.Bool("stat") {
		fmt.Fprintf(stdout, "%s\t%d\n", content.ContentType, content.Size())
		return cmd.ExitOK, nil
	}

	if _, err := stdout.Write(content.Data); err != nil {
		return cmd.ExitFailure, err
	}

	return cmd.ExitOK, nil
}

func (c *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"stat": {
				Name:        "stat",
				Short:       "s",
				Type:        "bool",
				Description: "Print content type and size instead of the content",
			},
		},
	}
}
