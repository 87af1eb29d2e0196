package cli

import (
	"errors"
	"fmt"
	"io"

	certifyapp "github.com/osvaldoandrade/memostamp/internal/app/certify"
	ledgerapp "github.com/osvaldoandrade/memostamp/internal/app/ledger"
	maintenanceapp "github.com/osvaldoandrade/memostamp/internal/app/maintenance"
	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	repoapp "github.com/osvaldoandrade/memostamp/internal/app/repo"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/filesystem"
	"github.com/osvaldoandrade/memostamp/internal/infra/gitstate"
	"github.com/osvaldoandrade/memostamp/internal/infra/manifestfile"
	"github.com/osvaldoandrade/memostamp/internal/infra/schema"
	"github.com/osvaldoandrade/memostamp/internal/infra/txjson"
	"github.com/osvaldoandrade/memostamp/internal/platform"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindRejected   ErrorKind = "rejected"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitRejected = 5
)

var errStampNotFound = errors.New("no timestamp recorded for hash")

// errorClasses is matched in order; the first class holding a sentinel the
// error wraps decides the exit code.
var errorClasses = []struct {
	code      int
	kind      ErrorKind
	sentinels []error
}{
	{ExitNotFound, KindNotFound, []error{
		errStampNotFound,
		manifestfile.ErrManifestNotFound,
		gitstate.ErrRepoNotFound,
	}},
	{ExitConflict, KindConflict, []error{
		domain.ErrLedgerChanged,
		repoapp.ErrAlreadyInitialized,
	}},
	{ExitInvalid, KindValidation, []error{
		errInvalidInput,
		paths.ErrDataDirRequired,
		repoapp.ErrInvalidGenesisSeq,
		repoapp.ErrInvalidMaxEntries,
		repoapp.ErrWALRequiresSQLite,
		certifyapp.ErrAccountNotConfigured,
		ledgerapp.ErrPayloadRequired,
		ledgerapp.ErrInvalidLimit,
		maintenanceapp.ErrInvalidPruneAge,
		platform.ErrInvalidLogConfig,
		schema.ErrInvalidDocument,
		txjson.ErrInvalidMemoData,
		filesystem.ErrNotRegularFile,
		domain.ErrInvalidMemoHash,
		domain.ErrTxTypeRequired,
		domain.ErrAccountRequired,
		domain.ErrInvalidAccount,
	}},
}

// ExitError is what a command failure turns into at the process boundary.
// HookCode carries the hook's rejection code for KindRejected.
type ExitError struct {
	Code     int
	Kind     ErrorKind
	Message  string
	HookCode int64
	Err      error
}

func (e ExitError) Error() string {
	return e.message()
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func (e ExitError) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "unknown error"
	}
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	var rejection *domain.RejectionError
	if errors.As(err, &rejection) {
		return ExitError{
			Code:     ExitRejected,
			Kind:     KindRejected,
			Message:  rejection.Message,
			HookCode: rejection.Code,
			Err:      err,
		}
	}
	for _, class := range errorClasses {
		for _, sentinel := range class.sentinels {
			if errors.Is(err, sentinel) {
				return ExitError{Code: class.code, Kind: class.kind, Err: err}
			}
		}
	}
	return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
}

func ExitCode(err error) int {
	return NormalizeError(err).Code
}

type cliErrorOutput struct {
	Code     int    `json:"code"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	HookCode int64  `json:"hook_code,omitzero"`
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	if asJSON {
		return writeJSON(w, cliErrorOutput{
			Code:     exitErr.Code,
			Kind:     string(exitErr.Kind),
			Message:  exitErr.message(),
			HookCode: exitErr.HookCode,
		})
	}

	ui := newRenderer(w, false)
	var prefix string
	switch {
	case exitErr.Kind == KindRejected:
		prefix = ui.warn(fmt.Sprintf("Rejected (code %d)", exitErr.HookCode))
	case exitErr.Kind != "":
		prefix = ui.err(fmt.Sprintf("Error (%s)", exitErr.Kind))
	default:
		prefix = ui.err("Error")
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, exitErr.message())
	return err
}
