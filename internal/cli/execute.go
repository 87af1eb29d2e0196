package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

// Execute runs the CLI and returns the process exit code. SIGINT and SIGTERM
// cancel the command context so serve and watch can shut down cleanly.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	exitErr := NormalizeError(err)
	_ = writeCLIError(cmd.ErrOrStderr(), exitErr, jsonRequested(cmd.PersistentFlags()))
	return exitErr.Code
}

// jsonRequested reads --json after parsing. Errors raised while parsing
// flags leave it at its default.
func jsonRequested(flags *pflag.FlagSet) bool {
	if flags == nil || flags.Lookup("json") == nil {
		return false
	}
	value, err := flags.GetBool("json")
	return err == nil && value
}
