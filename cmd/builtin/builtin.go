package builtin

import "github.com/xirelogy/magpie-s3-filesystem/cmd"

// InitBuiltin registers every builtin command with cm.
func InitBuiltin(cm *cmd.CommandManager) error {
	commands := []cmd.Command{
		&TestCommand{},
		&CatCommand{},
		&PutCommand{},
		&RmCommand{},
		&MkdirCommand{},
		&RmdirCommand{},
		&HelpCommand{manager: cm},
	}

	for _, command := range commands {
		if err := cm.Register(command); err != nil {
			return err
		}
	}

	return nil
}
