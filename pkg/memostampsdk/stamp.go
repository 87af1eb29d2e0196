package memostampsdk

import (
	"context"
	"io"
	"time"

	certifyapp "github.com/osvaldoandrade/memostamp/internal/app/certify"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/filesystem"
)

type Stamp struct {
	Hash string
	Size int64
	// LedgerSeq is the ledger that carried this request.
	LedgerSeq int64
	// Timestamp is the ledger that first recorded Hash.
	Timestamp int64
	Existing  bool
	Accepted  bool
	Message   string
}

type Trace struct {
	Label string
	Value int64
}

type Receipt struct {
	TxID      string
	TxHash    string
	LedgerSeq int64
	ClosedAt  time.Time
	Account   string
	MemoHash  string
	Accepted  bool
	Code      int64
	Message   string
	Traces    []Trace
}

type Ledger struct {
	Sequence     int64
	ClosedAt     time.Time
	StateEntries int64
}

type ReceiptQuery struct {
	Limit    int
	MemoHash string
	// Rejected selects rejected receipts when set; nil lists both.
	Rejected *bool
}

// Stamp hashes content and records its first-seen timestamp.
func (c *Client) Stamp(ctx context.Context, content io.Reader) (Stamp, error) {
	n, err := c.current()
	if err != nil {
		return Stamp{}, err
	}
	result, err := n.Certify.Stamp(ctx, content)
	if err != nil {
		return Stamp{}, err
	}
	return toStamp(result), nil
}

func (c *Client) StampFile(ctx context.Context, path string) (Stamp, error) {
	file, err := filesystem.Source{}.Open(ctx, path)
	if err != nil {
		return Stamp{}, err
	}
	defer file.Close()
	return c.Stamp(ctx, file)
}

// Check returns the timestamp recorded for content, or ErrNotFound.
func (c *Client) Check(ctx context.Context, content io.Reader) (int64, error) {
	n, err := c.current()
	if err != nil {
		return 0, err
	}
	result, err := n.Certify.Check(ctx, content)
	if err != nil {
		return 0, err
	}
	return checked(result)
}

// Lookup returns the timestamp recorded for a hex hash, or ErrNotFound.
func (c *Client) Lookup(ctx context.Context, hexHash string) (int64, error) {
	n, err := c.current()
	if err != nil {
		return 0, err
	}
	result, err := n.Certify.CheckHash(ctx, hexHash)
	if err != nil {
		return 0, err
	}
	return checked(result)
}

// Submit runs a raw transaction JSON document through the hook. A hook
// rejection is reported in the receipt, not as an error.
func (c *Client) Submit(ctx context.Context, raw []byte) (Receipt, error) {
	n, err := c.current()
	if err != nil {
		return Receipt{}, err
	}
	receipt, err := n.Ledger.SubmitJSON(ctx, raw)
	if err != nil {
		return Receipt{}, err
	}
	return toReceipt(receipt), nil
}

func (c *Client) Latest(ctx context.Context) (Ledger, error) {
	n, err := c.current()
	if err != nil {
		return Ledger{}, err
	}
	info, err := n.Ledger.Latest(ctx)
	if err != nil {
		return Ledger{}, err
	}
	return Ledger{Sequence: info.Sequence, ClosedAt: info.ClosedAt, StateEntries: info.StateEntries}, nil
}

func (c *Client) Receipts(ctx context.Context, query ReceiptQuery) ([]Receipt, error) {
	n, err := c.current()
	if err != nil {
		return nil, err
	}
	domainQuery := domain.ReceiptQuery{Limit: query.Limit, MemoHash: query.MemoHash}
	if query.Rejected != nil {
		domainQuery.Status = domain.OutcomeAccepted
		if *query.Rejected {
			domainQuery.Status = domain.OutcomeRejected
		}
	}
	receipts, err := n.Ledger.Receipts(ctx, domainQuery)
	if err != nil {
		return nil, err
	}
	out := make([]Receipt, 0, len(receipts))
	for _, receipt := range receipts {
		out = append(out, toReceipt(receipt))
	}
	return out, nil
}

func checked(result certifyapp.CheckResult) (int64, error) {
	if !result.Found {
		return 0, ErrNotFound
	}
	return result.Timestamp, nil
}

func toStamp(result certifyapp.StampResult) Stamp {
	return Stamp{
		Hash:      result.Hash.String(),
		Size:      result.Size,
		LedgerSeq: result.Receipt.LedgerSeq,
		Timestamp: result.Timestamp,
		Existing:  result.Existing,
		Accepted:  result.Receipt.Outcome.Accepted(),
		Message:   result.Receipt.Outcome.Message,
	}
}

func toReceipt(receipt domain.Receipt) Receipt {
	out := Receipt{
		TxID:      receipt.TxID,
		TxHash:    receipt.TxHash,
		LedgerSeq: receipt.LedgerSeq,
		ClosedAt:  receipt.ClosedAt,
		Account:   receipt.Account,
		MemoHash:  receipt.MemoHash,
		Accepted:  receipt.Outcome.Accepted(),
		Code:      receipt.Outcome.Code,
		Message:   receipt.Outcome.Message,
	}
	for _, trace := range receipt.Traces {
		out.Traces = append(out.Traces, Trace{Label: trace.Label, Value: trace.Value})
	}
	return out
}
