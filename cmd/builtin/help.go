package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
)

// HelpCommand lists the commands registered with its manager.
type HelpCommand struct {
	manager *cmd.CommandManager
}

func (h *HelpCommand) Name() string {
	return "help"
}

func (h *HelpCommand) Description() string {
	return "List available commands"
}

func (h *HelpCommand) Usage() string {
	return "help"
}

func (h *HelpCommand) Execute(ctx context.Context, fs filesystem.FileSystem, args *cmd.CommandArgs, stdout io.Writer) (int, error) {
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, command := range h.manager.List() {
		fmt.Fprintf(w, "%s\t%s\n", command.Usage(), command.Description())
	}

	if err := w.Flush(); err != nil {
		return cmd.ExitFailure, err
	}
	return cmd.ExitOK, nil
}

func (h *HelpCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
