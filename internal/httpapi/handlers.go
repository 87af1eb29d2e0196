package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-json-experiment/json"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	statusSuccess  = "success"
	statusNotFound = "not_found"
	statusError    = "error"

	msgUploadFailed = "Failed to process transaction."
	msgHashExists   = "Hash exists in hook's state."
	msgHashMissing  = "Hash does not exist in hook's state."
)

type uploadResponse struct {
	Status            string `json:"status"`
	Hash              string `json:"hash"`
	LedgerIndex       int64  `json:"ledger_index"`
	TransactionResult string `json:"transactionResult"`
	ResultMessage     string `json:"resultMessage"`
	Timestamp         int64  `json:"timestamp,omitzero"`
	Existing          bool   `json:"existing,omitzero"`
}

type checkResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Hash      string `json:"hash,omitempty"`
	Timestamp int64  `json:"timestamp,omitzero"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string     `json:"status"`
	Ledger LedgerView `json:"ledger"`
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	err := s.withUpload(w, r, func(ctx context.Context, file io.Reader) error {
		result, err := s.certifier.Stamp(ctx, file)
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, uploadResponse{
			Status:            statusSuccess,
			Hash:              strings.ToLower(result.Hash.String()),
			LedgerIndex:       result.Receipt.LedgerSeq,
			TransactionResult: transactionResult(result.Receipt.Outcome),
			ResultMessage:     result.Receipt.Outcome.Message,
			Timestamp:         result.Timestamp,
			Existing:          result.Existing,
		})
		return nil
	})
	if err != nil {
		s.logger.Error("upload failed", "error", err)
		s.writeJSON(w, statusFor(err), errorResponse{
			Status:  statusError,
			Message: msgUploadFailed,
			Error:   err.Error(),
		})
	}
}

func (s *Server) handleCheckHash(w http.ResponseWriter, r *http.Request) {
	err := s.withUpload(w, r, func(ctx context.Context, file io.Reader) error {
		result, err := s.certifier.Check(ctx, file)
		if err != nil {
			return err
		}
		s.writeCheck(w, result.Hash, result.Found, result.Timestamp)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
	}
}

func (s *Server) handleGetStamp(w http.ResponseWriter, r *http.Request) {
	result, err := s.certifier.CheckHash(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeCheck(w, result.Hash, result.Found, result.Timestamp)
}

func (s *Server) writeCheck(w http.ResponseWriter, hash domain.MemoHash, found bool, timestamp int64) {
	if !found {
		s.writeJSON(w, http.StatusNotFound, checkResponse{
			Status:  statusNotFound,
			Message: msgHashMissing,
			Hash:    strings.ToLower(hash.String()),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, checkResponse{
		Status:    statusSuccess,
		Message:   msgHashExists,
		Hash:      strings.ToLower(hash.String()),
		Timestamp: timestamp,
	})
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize))
	if err != nil {
		s.writeError(w, fmt.Errorf("read body: %w", err))
		return
	}
	receipt, err := s.ledger.SubmitJSON(r.Context(), raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewReceiptView(receipt))
}

func (s *Server) handleLatestLedger(w http.ResponseWriter, r *http.Request) {
	info, err := s.ledger.Latest(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewLedgerView(info))
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	query, err := parseReceiptQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	receipts, err := s.ledger.Receipts(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]ReceiptView, 0, len(receipts))
	for _, receipt := range receipts {
		views = append(views, NewReceiptView(receipt))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.ledger.Latest(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Ledger: NewLedgerView(info)})
}

func (s *Server) withUpload(w http.ResponseWriter, r *http.Request, fn func(context.Context, io.Reader) error) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return ErrFileRequired
		}
		return fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	return fn(r.Context(), file)
}

func parseReceiptQuery(r *http.Request) (domain.ReceiptQuery, error) {
	values := r.URL.Query()
	query := domain.ReceiptQuery{MemoHash: values.Get("memo")}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ReceiptQuery{}, fmt.Errorf("%w: %q", errInvalidQuery, raw)
		}
		query.Limit = limit
	}
	if raw := values.Get("status"); raw != "" {
		status, err := domain.ParseOutcomeStatus(raw)
		if err != nil {
			return domain.ReceiptQuery{}, fmt.Errorf("%w: %v", errInvalidQuery, err)
		}
		query.Status = status
	}
	return query, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Status: statusError, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, body); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}
