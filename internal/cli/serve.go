package cli

import (
	"github.com/osvaldoandrade/memostamp/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	addr := envDefault("MEMOSTAMP_ADDR", httpapi.DefaultAddr)
	var corsOrigins []string
	var maxUpload int64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and JSON-RPC API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			server := httpapi.NewServer(svc.Ledger, svc.Certify, httpapi.Options{
				CORSOrigins:   corsOrigins,
				MaxUploadSize: maxUpload,
				Gatherer:      svc.Metrics.Registry(),
				Logger:        opts.log(),
			})
			return server.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "Listen address")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", httpapi.DefaultMaxUploadSize, "Maximum upload size in bytes")
	return cmd
}
