package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

func newVoiceCommand(container *app.Container, clipboard ports.Clipboard) *cobra.Command {
	var (
		generate bool
		opts     generateOptions
	)

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Dictate a prompt; stops when the transcriber ends or on Ctrl-C",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Ctrl-C ends the recording here rather than the whole command.
			ctx := context.WithoutCancel(cmd.Context())
			transcript, err := recordTranscript(ctx, cmd, container)
			if err != nil {
				return err
			}
			if !generate {
				return nil
			}
			if transcript == "" {
				return fmt.Errorf("nothing was transcribed")
			}
			genCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(genCtx, cmd, container, clipboard, transcript, opts)
		},
	}

	cmd.Flags().BoolVarP(&generate, "generate", "g", false, "Draft an email from the transcript")
	bindGenerateFlags(cmd.Flags(), &opts)
	return cmd
}

// recordTranscript streams transcript lines to stderr and returns them joined.
func recordTranscript(ctx context.Context, cmd *cobra.Command, container *app.Container) (string, error) {
	events, err := container.Assistant.StartRecording(ctx)
	if err != nil {
		return "", err
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, "Listening... (Ctrl-C to stop)")

	var (
		parts   []string
		lastErr error
	)
	for {
		select {
		case <-interrupts:
			_ = container.Assistant.StopRecording()
		case ev, ok := <-events:
			if !ok {
				return strings.Join(parts, " "), lastErr
			}
			switch ev.Kind {
			case domain.VoiceTranscript:
				parts = append(parts, ev.Text)
				fmt.Fprintln(cmd.OutOrStdout(), ev.Text)
			case domain.VoiceError:
				lastErr = ev.Err
				fmt.Fprintf(errOut, "Voice capture failed: %v\n", ev.Err)
			case domain.VoiceEnd:
				fmt.Fprintln(errOut, "Stopped listening.")
			}
		}
	}
}
