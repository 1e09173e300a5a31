package cmd

import (
	"context"
	"io"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
)

// Exit codes returned by commands.
const (
	ExitOK      = 0
	ExitFalse   = 1
	ExitFailure = 2
)

// Command is a single operation runnable against a file system.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "put [--type mime] <path>")
	Usage() string

	// Execute runs the command with parsed arguments and writes its output to stdout.
	// Predicates report ExitFalse without an error; failures report ExitFailure.
	Execute(ctx context.Context, fs filesystem.FileSystem, args *CommandArgs, stdout io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
