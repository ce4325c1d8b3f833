package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

type generateOptions struct {
	hints   domain.EmailContext
	copy    bool
	asJSON  bool
	timeout time.Duration
}

func bindGenerateFlags(flags *pflag.FlagSet, opts *generateOptions) {
	flags.StringVar(&opts.hints.Tone, "tone", "", "Tone hint (e.g. formal, casual)")
	flags.StringVar(&opts.hints.Recipient, "recipient", "", "Who the email is addressed to")
	flags.StringVar(&opts.hints.Style, "style", "", "Style hint (e.g. concise, detailed)")
	flags.StringVar(&opts.hints.SenderName, "sender", "", "Name to sign the email with")
	flags.StringVar(&opts.hints.AdditionalInfo, "info", "", "Extra details for the backend")
	flags.BoolVarP(&opts.copy, "copy", "c", false, "Copy the generated email to the clipboard")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the structured result as JSON")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Overall deadline for the request (0 uses configured timeouts)")
}

func newGenerateCommand(container *app.Container, clipboard ports.Clipboard) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Draft an email from a prompt",
		Long:  "Draft an email from a prompt. With no arguments the prompt is read from piped stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFromInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd, container, clipboard, prompt, opts)
		},
	}

	bindGenerateFlags(cmd.Flags(), &opts)
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, container *app.Container, clipboard ports.Clipboard, prompt string, opts generateOptions) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var spinner *Spinner
	if !opts.asJSON {
		spinner = NewTerminalSpinner(os.Stderr, "Drafting email...")
	}
	spinner.Start()
	result := container.Assistant.Generate(ctx, domain.GenerateRequest{Prompt: prompt, Context: opts.hints})
	spinner.Stop()

	if err := RenderResult(cmd.OutOrStdout(), result, opts.asJSON); err != nil {
		return err
	}

	if opts.copy && clipboard != nil {
		if err := clipboard.Copy(result.Email); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: copy to clipboard failed: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		}
	}
	return nil
}

// promptFromInput joins args, or reads piped stdin when no args are given.
func promptFromInput(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "", domain.ErrEmptyPrompt
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return string(data), nil
}
