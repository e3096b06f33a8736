package mainboilerplate

import "github.com/jessevdk/go-flags"

// AddCommandFunc adds a sub-command to a parent flags.Command.
type AddCommandFunc func(*flags.Command) error

// CommandRegistry collects AddCommandFuncs by the dotted name of their parent
// command, allowing sub-commands to register themselves (typically from init)
// before the parser is built.
type CommandRegistry map[string][]AddCommandFunc

// NewCommandRegistry returns an empty CommandRegistry.
func NewCommandRegistry() CommandRegistry {
	return make(CommandRegistry)
}

// AddCommand registers |command| beneath the command named |parentName|.
// Nested parents are separated with dots, and "" names the root:
//
//	AddCommand("", "level1", ....)
//	AddCommand("level1", "level2", ....)
func (cr CommandRegistry) AddCommand(parentName string, command string, shortDescription string, longDescription string, data interface{}) {
	cr[parentName] = append(cr[parentName], func(cmd *flags.Command) error {
		_, err := cmd.AddCommand(command, shortDescription, longDescription, data)
		return err
	})
}

// AddCommands adds commands registered under |rootName| to |rootCmd|. If
// |recursive|, commands registered beneath those commands are added as well.
func (cr CommandRegistry) AddCommands(rootName string, rootCmd *flags.Command, recursive bool) error {
	for _, addCommandFunc := range cr[rootName] {
		if err := addCommandFunc(rootCmd); err != nil {
			return err
		}
	}
	if !recursive {
		return nil
	}

	for _, cmd := range rootCmd.Commands() {
		var name = cmd.Name
		if rootName != "" {
			name = rootName + "." + name
		}
		if err := cr.AddCommands(name, cmd, recursive); err != nil {
			return err
		}
	}
	return nil
}
