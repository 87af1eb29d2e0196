package cli

import (
	"fmt"
	"time"

	maintenanceapp "github.com/osvaldoandrade/memostamp/internal/app/maintenance"
	"github.com/spf13/cobra"
)

type gcOutput struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Cutoff  string `json:"cutoff"`
}

func newMaintenanceCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "State backend maintenance operations",
		RunE:  runHelp,
	}
	cmd.AddCommand(newMaintenanceGCCmd(opts))
	return cmd
}

func newMaintenanceGCCmd(opts *RootOptions) *cobra.Command {
	var pruneAge time.Duration
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Compact the state backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			var result maintenanceapp.GCResult
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Compacting " + string(svc.Manifest.Backend) + " state")
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				var err error
				result, err = svc.GC.GC(cmd.Context(), maintenanceapp.GCOptions{PruneAge: pruneAge})
				return err
			})
			if err != nil {
				return err
			}
			opts.log().Info("state compacted", "backend", svc.Manifest.Backend, "cutoff", result.Cutoff)
			return writeGCResult(cmd, string(svc.Manifest.Backend), result, opts.JSONOutput)
		},
	}
	cmd.Flags().DurationVar(&pruneAge, "prune-age", 0, "Keep unreferenced data younger than this")
	return cmd
}

func writeGCResult(cmd *cobra.Command, backend string, result maintenanceapp.GCResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, gcOutput{
			Status:  "ok",
			Backend: backend,
			Cutoff:  formatTime(result.Cutoff),
		})
	}
	ui := newRenderer(out, asJSON)
	_, err := fmt.Fprintf(out, "%s (%s, cutoff %s)\n", ui.ok("GC complete"), backend, formatTime(result.Cutoff))
	return err
}
