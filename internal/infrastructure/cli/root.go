package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/infrastructure/cli/commands"
	"github.com/doeshing/maildraft/internal/ports"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The configuration is loaded when a
// command that needs services runs. The returned container owns the backend
// process; callers must Close it once the command has run.
func NewRootCmd(opts Options) (*cobra.Command, *app.Container) {
	container := app.NewContainer(app.Options{ConfigPath: opts.ConfigPath, Verbose: opts.Verbose})
	return newRootCommand(container, NewClipboard()), container
}

// needsServices reports whether cmd needs an initialized container. Commands
// annotated with commands.AnnotationSkipInit, and their children, run on the
// config loader alone so they keep working on a broken configuration.
func needsServices(cmd *cobra.Command) bool {
	if cmd.Name() == "help" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[commands.AnnotationSkipInit]; ok {
			return false
		}
	}
	return true
}

func newRootCommand(container *app.Container, clipboard ports.Clipboard) *cobra.Command {
	var rootOpts generateOptions

	root := &cobra.Command{
		Use:   "maildraft [prompt]",
		Short: "maildraft - local email drafting assistant",
		Long:  "maildraft drafts emails from short prompts using a locally supervised language-model backend.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			prompt, err := promptFromInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd, container, clipboard, prompt, rootOpts)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsServices(cmd) {
				return nil
			}
			return container.Init(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindGenerateFlags(root.Flags(), &rootOpts)

	root.AddCommand(
		newGenerateCommand(container, clipboard),
		newVoiceCommand(container, clipboard),
		commands.NewHistoryCommand(container),
		commands.NewSettingsCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)
	return root
}
