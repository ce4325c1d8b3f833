package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doeshing/maildraft/internal/infrastructure/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	opts := cli.Options{Verbose: isVerbose()}

	root, container := cli.NewRootCmd(opts)
	defer func() {
		// ctx may already be cancelled by a signal; the backend must still be stopped.
		if err := container.Close(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "warning: backend shutdown:", err)
		}
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("MAILDRAFT_DEBUG"), "1") || strings.EqualFold(os.Getenv("MAILDRAFT_DEBUG"), "true")
}
