package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
	"github.com/xirelogy/magpie-s3-filesystem/data"
)

// PutCommand uploads a local file or standard input.
// Without --type the content type is sniffed by the file system.
type PutCommand struct {
}

func (p *PutCommand) Name() string {
	return "put"
}

func (p *PutCommand) Description() string {
	return "Upload a local file or standard input"
}

func (p *PutCommand) Usage() string {
	return "put [--type mime] [--file local] <path>"
}

func (p *PutCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	path, err := args.Path()
	if err != nil {
		return cmd.ExitFailure, err
	}

	var buffer []byte
	if source := args.String("file"); source != "" {
		buffer, err = os.ReadFile(source)
	} else if args.Stdin != nil {
		buffer, err = io.ReadAll(args.Stdin)
	} else {
		err = fmt.Errorf("%w: no input, use --file or standard input", cmd.ErrUsage)
	}
	if err != nil {
		return cmd.ExitFailure, err
	}

	if err := fs.WriteFile(ctx, path, data.NewBinaryContent(buffer, args.String("type"))); err != nil {
		return cmd.ExitFailure, err
	}

	return cmd.ExitOK, nil
}

func (p *PutCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"type": {
				Name:        "type",
				Short:       "t",
				Type:        "string",
				Description: "Explicit content type",
			},
			"file": {
				Name:        "file",
				Short:       "f",
				Type:        "string",
				Description: "Local file to upload",
			},
		},
	}
}
