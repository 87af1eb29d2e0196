package httpapi

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type SubmitTransactionRequest struct {
	Transaction stdjson.RawMessage `json:"transaction"`
}

type GetStampRequest struct {
	Hash string `json:"hash"`
}

type GetReceiptsRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Memo   string `json:"memo,omitempty"`
	Status string `json:"status,omitempty"`
}

func newRPCHandler(fn any) jrpc2.Handler {
	fi, err := handler.Check(fn)
	if err != nil {
		panic(err)
	}
	// positional params would freeze the argument order
	fi.AllowArray(false)
	return fi.Wrap()
}

func (s *Server) rpcMethods() handler.Map {
	return handler.Map{
		"submitTransaction": newRPCHandler(s.rpcSubmitTransaction),
		"getStamp":          newRPCHandler(s.rpcGetStamp),
		"getLatestLedger":   newRPCHandler(s.rpcGetLatestLedger),
		"getReceipts":       newRPCHandler(s.rpcGetReceipts),
	}
}

func (s *Server) rpcSubmitTransaction(ctx context.Context, request SubmitTransactionRequest) (ReceiptView, error) {
	receipt, err := s.ledger.SubmitJSON(ctx, request.Transaction)
	if err != nil {
		return ReceiptView{}, rpcError(err)
	}
	return NewReceiptView(receipt), nil
}

func (s *Server) rpcGetStamp(ctx context.Context, request GetStampRequest) (StampView, error) {
	result, err := s.certifier.CheckHash(ctx, request.Hash)
	if err != nil {
		return StampView{}, rpcError(err)
	}
	return StampView{
		Hash:      result.Hash.String(),
		Found:     result.Found,
		Timestamp: result.Timestamp,
	}, nil
}

func (s *Server) rpcGetLatestLedger(ctx context.Context) (LedgerView, error) {
	info, err := s.ledger.Latest(ctx)
	if err != nil {
		return LedgerView{}, rpcError(err)
	}
	return NewLedgerView(info), nil
}

func (s *Server) rpcGetReceipts(ctx context.Context, request GetReceiptsRequest) ([]ReceiptView, error) {
	query := domain.ReceiptQuery{Limit: request.Limit, MemoHash: request.Memo}
	if request.Status != "" {
		status, err := domain.ParseOutcomeStatus(request.Status)
		if err != nil {
			return nil, &jrpc2.Error{Code: jrpc2.InvalidParams, Message: err.Error()}
		}
		query.Status = status
	}
	receipts, err := s.ledger.Receipts(ctx, query)
	if err != nil {
		return nil, rpcError(err)
	}
	views := make([]ReceiptView, 0, len(receipts))
	for _, receipt := range receipts {
		views = append(views, NewReceiptView(receipt))
	}
	return views, nil
}

func rpcError(err error) error {
	var rpcErr *jrpc2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	code := jrpc2.InternalError
	if statusFor(err) == http.StatusBadRequest {
		code = jrpc2.InvalidParams
	}
	return &jrpc2.Error{Code: code, Message: err.Error()}
}
