package httpapi

import (
	"errors"
	"net/http"

	"github.com/osvaldoandrade/memostamp/internal/app/certify"
	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/schema"
	"github.com/osvaldoandrade/memostamp/internal/infra/txjson"
)

var ErrFileRequired = errors.New("multipart field \"file\" is required")
var errInvalidQuery = errors.New("invalid query parameter")

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrFileRequired),
		errors.Is(err, domain.ErrInvalidMemoHash),
		errors.Is(err, domain.ErrTxTypeRequired),
		errors.Is(err, domain.ErrAccountRequired),
		errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, schema.ErrInvalidDocument),
		errors.Is(err, txjson.ErrInvalidMemoData),
		errors.Is(err, errInvalidQuery),
		errors.Is(err, ledger.ErrPayloadRequired),
		errors.Is(err, ledger.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrLedgerChanged):
		return http.StatusConflict
	case errors.Is(err, certify.ErrAccountNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
