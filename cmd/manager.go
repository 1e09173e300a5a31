package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/log"
)

var ErrUnknownCommand = errors.New("command not found")

// CommandManager handles command registration, parsing, and execution
type CommandManager struct {
	mu     sync.RWMutex
	fs     filesystem.FileSystem
	cmds   map[string]Command
	logger *log.Logger

	stdin  io.Reader
	stdout io.Writer
}

func NewCommandManager(fs filesystem.FileSystem, stdin io.Reader, stdout io.Writer, logger *log.Logger) *CommandManager {
	if logger == nil {
		logger = log.Discard()
	}

	return &CommandManager{
		fs:     fs,
		cmds:   make(map[string]Command),
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}
}

// Bind attaches the file system commands operate on, replacing the logger when one is given.
// Managers created without a file system can still run commands that ignore it.
func (cm *CommandManager) Bind(fs filesystem.FileSystem, logger *log.Logger) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.fs = fs
	if logger != nil {
		cm.logger = logger
	}
}

// Register registers a custom command
func (cm *CommandManager) Register(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	cm.cmds[name] = cmd
	return nil
}

// Unregister removes a registered command
func (cm *CommandManager) Unregister(name string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	delete(cm.cmds, name)
	return nil
}

// Get returns a command by name
func (cm *CommandManager) Get(name string) (Command, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	cmd, exists := cm.cmds[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	return cmd, nil
}

// List returns all registered commands sorted by name
func (cm *CommandManager) List() []Command {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	commands := make([]Command, 0, len(cm.cmds))
	for _, cmd := range cm.cmds {
		commands = append(commands, cmd)
	}

	slices.SortFunc(commands, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return commands
}

// Execute parses and executes a command
func (cm *CommandManager) Execute(ctx context.Context, args ...string) (int, error) {
	if len(args) == 0 {
		return ExitFailure, fmt.Errorf("%w: no command specified", ErrUsage)
	}

	cmd, err := cm.Get(args[0])
	if err != nil {
		return ExitFailure, err
	}

	parsed, err := NewParser(cmd.GetFlags()).Parse(args[1:])
	if err != nil {
		return ExitFailure, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	parsed.Stdin = cm.stdin

	cm.mu.RLock()
	fs, logger := cm.fs, cm.logger
	cm.mu.RUnlock()

	logger.Debug("executing '%s' with %v", cmd.Name(), parsed.Args)

	code, err := cmd.Execute(ctx, fs, parsed, cm.stdout)
	if err != nil {
		logger.Debug("'%s' failed with exit code %d: %v", cmd.Name(), code, err)
	}

	return code, err
}
