package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/infrastructure/cli/helpers"
)

// NewSettingsCommand creates the settings command with its subcommands
func NewSettingsCommand(container *app.Container) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change user settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(cmd, container, false)
		},
	}

	settingsCmd.AddCommand(
		newSettingsShowCommand(container),
		newSettingsSetCommand(container),
	)

	return settingsCmd
}

func newSettingsShowCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(cmd, container, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print settings as JSON")
	return cmd
}

func newSettingsSetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting (saveToHistory, aiSuggestions, theme)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: helpers.SettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.SettingsStore == nil {
				return errors.New(ErrSettingsStoreUnavailable)
			}
			ctx := cmd.Context()
			updated, err := helpers.ApplySetting(container.SettingsStore.Load(ctx), args[0], args[1])
			if err != nil {
				return err
			}
			if err := container.SettingsStore.Save(ctx, updated); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			displaySettings(cmd.OutOrStdout(), updated)
			return nil
		},
	}
}

func showSettings(cmd *cobra.Command, container *app.Container, asJSON bool) error {
	if container.SettingsStore == nil {
		return errors.New(ErrSettingsStoreUnavailable)
	}
	settings := container.SettingsStore.Load(cmd.Context())
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), settings)
	}
	displaySettings(cmd.OutOrStdout(), settings)
	return nil
}

func displaySettings(out io.Writer, settings domain.Settings) {
	fmt.Fprintf(out, "saveToHistory: %t\n", settings.SaveToHistory)
	fmt.Fprintf(out, "aiSuggestions: %t\n", settings.AISuggestions)
	fmt.Fprintf(out, "theme:         %s\n", settings.Theme)
}
