package cmd

import (
	"fmt"
	"io"
)

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string

	// Stdin is the input handed to commands that consume a payload
	Stdin io.Reader
}

// String returns the string flag name or an empty string.
func (ca *CommandArgs) String(name string) string {
	value, _ := ca.Flags[name].(string)
	return value
}

// Bool reports whether the bool flag name was set.
func (ca *CommandArgs) Bool(name string) bool {
	value, _ := ca.Flags[name].(bool)
	return value
}

// Path returns the single positional argument every command operates on.
func (ca *CommandArgs) Path() (string, error) {
	if len(ca.Args) != 1 {
		return "", fmt.Errorf("%w: expected exactly one path, got %d", ErrUsage, len(ca.Args))
	}

	return ca.Args[0], nil
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}
