package cli

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/osvaldoandrade/memostamp/internal/node"
	"github.com/osvaldoandrade/memostamp/internal/platform"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	DataDir    string
	Account    string
	JSONOutput bool
	LogLevel   string
	LogFormat  string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		DataDir:    envDefault("MEMOSTAMP_DIR", "."),
		Account:    envDefault("MEMOSTAMP_ACCOUNT", ""),
		JSONOutput: envBoolDefault("MEMOSTAMP_JSON", false),
		LogLevel:   envDefault("MEMOSTAMP_LOG_LEVEL", "info"),
		LogFormat:  envDefault("MEMOSTAMP_LOG_FORMAT", "text"),
	}
	cmd := &cobra.Command{
		Use:           "memostamp",
		Short:         "First-seen timestamps for content hashes",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := platform.ConfigureLogger(platform.LogConfig{
				Level:  opts.LogLevel,
				Format: opts.LogFormat,
			}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "dir", opts.DataDir, "Path to the data directory")
	cmd.PersistentFlags().StringVar(&opts.Account, "account", opts.Account, "Stamping account (overrides the manifest)")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", opts.JSONOutput, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newInitCmd(opts),
		newStatusCmd(opts),
		newStampCmd(opts),
		newCheckCmd(opts),
		newSubmitCmd(opts),
		newLookupCmd(opts),
		newLedgerCmd(opts),
		newReceiptsCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newIntegrityCmd(opts),
		newMaintenanceCmd(opts),
	)

	return cmd
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (o *RootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

func openNode(opts *RootOptions) (*node.Node, error) {
	return node.Open(node.Options{
		DataDir: opts.DataDir,
		Account: opts.Account,
		Logger:  opts.log(),
	})
}
