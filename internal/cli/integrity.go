package cli

import (
	"fmt"

	integrityapp "github.com/osvaldoandrade/memostamp/internal/app/integrity"
	"github.com/spf13/cobra"
)

type integrityIssueOutput struct {
	Subject string `json:"subject"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type integrityOutput struct {
	Ledger   int64                  `json:"ledger"`
	Receipts int                    `json:"receipts"`
	Stamps   int                    `json:"stamps"`
	Valid    int                    `json:"valid"`
	Issues   []integrityIssueOutput `json:"issues"`
}

func newIntegrityCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Check ledger consistency",
		RunE:  runHelp,
	}
	cmd.AddCommand(newIntegrityVerifyCmd(opts))
	return cmd
}

func newIntegrityVerifyCmd(opts *RootOptions) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay receipts against the ledger header and hook state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			var result integrityapp.VerifyResult
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Verifying ledger")
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				var err error
				result, err = svc.Verify.Verify(cmd.Context(), integrityapp.VerifyOptions{Deep: deep})
				return err
			})
			if err != nil {
				return err
			}
			if err := writeIntegrityResult(cmd, result, opts.JSONOutput); err != nil {
				return err
			}
			if len(result.Issues) > 0 {
				return ExitError{Code: ExitConflict, Kind: KindConflict, Message: fmt.Sprintf("%d integrity issue(s)", len(result.Issues))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Also read the hook state entry of every stamped hash")
	return cmd
}

func writeIntegrityResult(cmd *cobra.Command, result integrityapp.VerifyResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := integrityOutput{
			Ledger:   result.Ledger.Sequence,
			Receipts: result.Receipts,
			Stamps:   result.Stamps,
			Valid:    result.Valid,
			Issues:   make([]integrityIssueOutput, 0, len(result.Issues)),
		}
		for _, issue := range result.Issues {
			payload.Issues = append(payload.Issues, integrityIssueOutput{
				Subject: issue.Subject,
				Code:    issue.Code,
				Message: issue.Message,
			})
		}
		return writeJSON(out, payload)
	}

	ui := newRenderer(out, asJSON)
	if result.Stamps > 0 {
		ratio := float64(result.Valid) / float64(result.Stamps)
		if _, err := fmt.Fprintf(out, "%s %s %d/%d\n", ui.key("Stamps"), ui.bar(24, ratio), result.Valid, result.Stamps); err != nil {
			return err
		}
	}

	if len(result.Issues) == 0 {
		_, err := fmt.Fprintf(out, "%s: %d receipt(s) up to ledger %d verified\n", ui.ok("OK"), result.Receipts, result.Ledger.Sequence)
		return err
	}

	if _, err := fmt.Fprintf(out, "%s %d receipt(s): %d issue(s)\n", ui.warn("Issues"), result.Receipts, len(result.Issues)); err != nil {
		return err
	}
	for _, issue := range result.Issues {
		code := issue.Code
		if ui.color {
			code = ui.err(code)
		}
		if _, err := fmt.Fprintf(out, "- %s [%s] %s\n", issue.Subject, code, issue.Message); err != nil {
			return err
		}
	}
	return nil
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
