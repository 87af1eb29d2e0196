package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	certifyapp "github.com/osvaldoandrade/memostamp/internal/app/certify"
	repoapp "github.com/osvaldoandrade/memostamp/internal/app/repo"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/filesystem"
	"github.com/osvaldoandrade/memostamp/internal/infra/manifestfile"
	"github.com/osvaldoandrade/memostamp/internal/infra/statestore"
	"github.com/osvaldoandrade/memostamp/internal/node"
	"github.com/osvaldoandrade/memostamp/internal/platform"
	"github.com/spf13/cobra"
)

var errInvalidInput = errors.New("invalid input")

func newInitCmd(opts *RootOptions) *cobra.Command {
	var name string
	var backend string
	var genesisSeq int64
	var maxEntries int64
	var wal bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedBackend, err := domain.ParseBackend(backend)
			if err != nil {
				return fmt.Errorf("%w: %v", errInvalidInput, err)
			}
			service := repoapp.NewInitService(manifestfile.Store{}, statestore.Stores{}, platform.RealClock{})
			manifest, err := service.Init(cmd.Context(), opts.DataDir, repoapp.InitOptions{
				Name:            name,
				Backend:         parsedBackend,
				GenesisSeq:      genesisSeq,
				MaxStateEntries: maxEntries,
				Account:         opts.Account,
				SQLiteWAL:       wal,
			})
			if err != nil {
				return err
			}
			return writeManifest(cmd, manifest, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Ledger name (defaults to the directory name)")
	cmd.Flags().StringVar(&backend, "backend", string(domain.DefaultBackend), "State backend (sqlite, git)")
	cmd.Flags().Int64Var(&genesisSeq, "genesis-seq", domain.DefaultGenesisSeq, "Sequence of the first closed ledger")
	cmd.Flags().Int64Var(&maxEntries, "max-state-entries", 0, "Hook state entry limit (0 for unlimited)")
	cmd.Flags().BoolVar(&wal, "wal", false, "Use write-ahead logging for the sqlite backend")
	return cmd
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show data directory status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := repoapp.NewStatusService(manifestfile.Store{}, statestore.Stores{})
			status, err := service.Status(cmd.Context(), opts.DataDir)
			if err != nil {
				return err
			}
			return writeStatus(cmd, status, opts.JSONOutput)
		},
	}
}

func newStampCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stamp <file>...",
		Short: "Record first-seen timestamps for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Stamping")
			results := make([]stampOutput, 0, len(args))
			var rejected error
			for _, path := range args {
				var result certifyapp.StampResult
				err := withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label+" "+path, func() error {
					var err error
					result, err = stampFile(cmd, svc, path)
					return err
				})
				if err != nil {
					return err
				}
				results = append(results, newStampOutput(path, result))
				if !result.Receipt.Outcome.Accepted() && rejected == nil {
					rejected = rejectionOf(result.Receipt)
				}
			}
			if err := writeStampResults(cmd, results, opts.JSONOutput); err != nil {
				return err
			}
			return rejected
		},
	}
}

func stampFile(cmd *cobra.Command, svc *node.Node, path string) (certifyapp.StampResult, error) {
	file, err := filesystem.Source{}.Open(cmd.Context(), path)
	if err != nil {
		return certifyapp.StampResult{}, err
	}
	defer file.Close()
	return svc.Certify.Stamp(cmd.Context(), file)
}

func newCheckCmd(opts *RootOptions) *cobra.Command {
	var hexHash string
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check whether a file or hash has a timestamp",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hexHash = strings.TrimSpace(hexHash)
			if (hexHash == "") == (len(args) == 0) {
				return fmt.Errorf("%w: pass either a file or --hash", errInvalidInput)
			}

			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			var result certifyapp.CheckResult
			if hexHash != "" {
				result, err = svc.Certify.CheckHash(cmd.Context(), hexHash)
			} else {
				result, err = checkFile(cmd, svc, args[0])
			}
			if err != nil {
				return err
			}
			if err := writeCheckResult(cmd, result, opts.JSONOutput); err != nil {
				return err
			}
			if !result.Found {
				return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: fmt.Errorf("%w: %s", errStampNotFound, result.Hash)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hexHash, "hash", "", "Hex-encoded 32-byte hash to check")
	return cmd
}

func checkFile(cmd *cobra.Command, svc *node.Node, path string) (certifyapp.CheckResult, error) {
	file, err := filesystem.Source{}.Open(cmd.Context(), path)
	if err != nil {
		return certifyapp.CheckResult{}, err
	}
	defer file.Close()
	return svc.Certify.Check(cmd.Context(), file)
}

func newSubmitCmd(opts *RootOptions) *cobra.Command {
	var payload string
	var payloadFile string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a raw transaction to the hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readJSONInput(cmd, "payload", payload, payloadFile)
			if err != nil {
				return err
			}

			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			receipt, err := svc.Ledger.SubmitJSON(cmd.Context(), data)
			if err != nil {
				return err
			}
			if err := writeReceipt(cmd, receipt, opts.JSONOutput); err != nil {
				return err
			}
			if !receipt.Outcome.Accepted() {
				return rejectionOf(receipt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "Inline transaction JSON")
	cmd.Flags().StringVar(&payloadFile, "file", "", "Path to transaction JSON")
	return cmd
}

func newLookupCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <hash>",
		Short: "Read the timestamp stored for a memo hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := domain.ParseMemoHash(args[0])
			if err != nil {
				return err
			}
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			result, err := svc.Ledger.Lookup(cmd.Context(), hash)
			if err != nil {
				return err
			}
			check := certifyapp.CheckResult{Hash: result.Hash, Found: result.Found, Timestamp: result.Timestamp}
			if err := writeCheckResult(cmd, check, opts.JSONOutput); err != nil {
				return err
			}
			if !result.Found {
				return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: fmt.Errorf("%w: %s", errStampNotFound, hash)}
			}
			return nil
		},
	}
}

func newLedgerCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show the latest closed ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			info, err := svc.Ledger.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return writeLedgerInfo(cmd, info, opts.JSONOutput)
		},
	}
}

func newReceiptsCmd(opts *RootOptions) *cobra.Command {
	var limit int
	var memo string
	var status string
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List receipts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := domain.ReceiptQuery{Limit: limit, MemoHash: strings.TrimSpace(memo)}
			if status != "" {
				parsed, err := domain.ParseOutcomeStatus(status)
				if err != nil {
					return fmt.Errorf("%w: %v", errInvalidInput, err)
				}
				query.Status = parsed
			}

			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			receipts, err := svc.Ledger.Receipts(cmd.Context(), query)
			if err != nil {
				return err
			}
			return writeReceipts(cmd, receipts, opts.JSONOutput)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum receipts to list (default 20)")
	cmd.Flags().StringVar(&memo, "memo", "", "Only receipts for this memo hash")
	cmd.Flags().StringVar(&status, "status", "", "Only receipts with this outcome (accepted, rejected)")
	return cmd
}

func rejectionOf(receipt domain.Receipt) error {
	return &domain.RejectionError{Code: receipt.Outcome.Code, Message: receipt.Outcome.Message}
}

func readJSONInput(cmd *cobra.Command, label, inline, filePath string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	filePath = strings.TrimSpace(filePath)
	if inline != "" && filePath != "" {
		return nil, fmt.Errorf("%w: use either --%s or --file, not both", errInvalidInput, label)
	}
	if inline == "" && filePath == "" {
		return nil, fmt.Errorf("%w: %s is required (use --%s or --file)", errInvalidInput, label, label)
	}
	if inline != "" {
		return []byte(inline), nil
	}
	if filePath == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read %s from stdin: %w", label, err)
		}
		return data, nil
	}
	data, err := filesystem.Source{}.ReadFile(cmd.Context(), filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", errInvalidInput, err)
		}
		return nil, err
	}
	return data, nil
}
