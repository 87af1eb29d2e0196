package integrity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	IssueLedgerRead    = "ledger_read"
	IssueReceiptRead   = "receipt_read"
	IssueDuplicateSeq  = "duplicate_seq"
	IssueSequenceGap   = "sequence_gap"
	IssueDuplicateTx   = "duplicate_tx"
	IssueHeadMismatch  = "head_mismatch"
	IssueStampTwice    = "stamp_rewritten"
	IssueStampMismatch = "stamp_mismatch"
	IssueStampMissing  = "stamp_missing"
	IssueStateRead     = "state_read"
	IssueEntryCount    = "entry_count"
)

type VerifyService struct {
	store Store
}

func NewVerifyService(store Store) *VerifyService {
	return &VerifyService{store: store}
}

// Verify replays the receipt log against the ledger header and, when deep,
// against the hook state. Findings are reported as issues; the error
// return is reserved for cancellation.
func (s *VerifyService) Verify(ctx context.Context, opts VerifyOptions) (VerifyResult, error) {
	var result VerifyResult
	info, err := s.store.Latest(ctx)
	if err != nil {
		result.Issues = append(result.Issues, newIssue("ledger", IssueLedgerRead, err))
		return result, ctx.Err()
	}
	result.Ledger = info

	receipts, err := s.store.ListReceipts(ctx, domain.ReceiptQuery{})
	if err != nil {
		result.Issues = append(result.Issues, newIssue("receipts", IssueReceiptRead, err))
		return result, ctx.Err()
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].LedgerSeq < receipts[j].LedgerSeq
	})
	result.Receipts = len(receipts)
	result.Issues = append(result.Issues, verifySequence(receipts, info)...)

	stamps, broken, issues := replayStamps(receipts)
	result.Issues = append(result.Issues, issues...)
	result.Stamps = len(stamps)
	if int64(len(stamps)) != info.StateEntries {
		result.Issues = append(result.Issues, newIssue("ledger", IssueEntryCount,
			fmt.Errorf("header records %d state entries, receipts created %d", info.StateEntries, len(stamps))))
	}

	memos := make([]string, 0, len(stamps))
	for memo := range stamps {
		memos = append(memos, memo)
	}
	sort.Strings(memos)
	for _, memo := range memos {
		if err := ctx.Err(); err != nil {
			return VerifyResult{}, err
		}
		if _, ok := broken[memo]; ok {
			continue
		}
		if opts.Deep {
			if issue, ok := s.verifyState(ctx, memo, stamps[memo]); !ok {
				result.Issues = append(result.Issues, issue)
				continue
			}
		}
		result.Valid++
	}
	return result, nil
}

func verifySequence(receipts []domain.Receipt, info domain.LedgerInfo) []Issue {
	var issues []Issue
	seenTx := make(map[string]int64, len(receipts))
	for i, receipt := range receipts {
		subject := fmt.Sprintf("ledger %d", receipt.LedgerSeq)
		if prev, ok := seenTx[receipt.TxID]; ok && receipt.TxID != "" {
			issues = append(issues, newIssue(subject, IssueDuplicateTx, fmt.Errorf("tx %s already closed in ledger %d", receipt.TxID, prev)))
		} else {
			seenTx[receipt.TxID] = receipt.LedgerSeq
		}
		if i == 0 {
			continue
		}
		prev := receipts[i-1].LedgerSeq
		switch {
		case receipt.LedgerSeq == prev:
			issues = append(issues, newIssue(subject, IssueDuplicateSeq, errors.New("two receipts share this ledger")))
		case receipt.LedgerSeq != prev+1:
			issues = append(issues, newIssue(subject, IssueSequenceGap, fmt.Errorf("previous receipt is ledger %d", prev)))
		}
	}

	last := int64(0)
	if len(receipts) > 0 {
		last = receipts[len(receipts)-1].LedgerSeq
	}
	if last != info.Sequence {
		issues = append(issues, newIssue("ledger", IssueHeadMismatch,
			fmt.Errorf("header is at ledger %d, last receipt is ledger %d", info.Sequence, last)))
	}
	return issues
}

// replayStamps returns the ledger that created each memo hash, the hashes
// whose receipts disagree, and the disagreements.
func replayStamps(receipts []domain.Receipt) (map[string]int64, map[string]struct{}, []Issue) {
	stamps := make(map[string]int64)
	broken := make(map[string]struct{})
	var issues []Issue
	for _, receipt := range receipts {
		if !receipt.Outcome.Accepted() || receipt.MemoHash == "" {
			continue
		}
		memo := receipt.MemoHash
		created, seen := stamps[memo]
		if receipt.Outcome.Code == 0 {
			if seen {
				broken[memo] = struct{}{}
				issues = append(issues, newIssue(memo, IssueStampTwice,
					fmt.Errorf("stored at ledger %d and again at ledger %d", created, receipt.LedgerSeq)))
				continue
			}
			stamps[memo] = receipt.LedgerSeq
			continue
		}
		if !seen || receipt.Outcome.Code != created {
			broken[memo] = struct{}{}
			issues = append(issues, newIssue(memo, IssueStampMismatch,
				fmt.Errorf("ledger %d reported timestamp %d, created at %d", receipt.LedgerSeq, receipt.Outcome.Code, created)))
		}
	}
	return stamps, broken, issues
}

func (s *VerifyService) verifyState(ctx context.Context, memo string, created int64) (Issue, bool) {
	hash, err := domain.ParseMemoHash(memo)
	if err != nil {
		// Memo data of another length never creates state.
		return newIssue(memo, IssueStampMismatch, err), false
	}
	value, err := s.store.GetState(ctx, hash.Bytes())
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return newIssue(memo, IssueStampMissing, fmt.Errorf("created at ledger %d", created)), false
		}
		return newIssue(memo, IssueStateRead, err), false
	}
	ts, ok := domain.DecodeTimestamp(value)
	if !ok || ts != created {
		return newIssue(memo, IssueStampMismatch, fmt.Errorf("state holds %x, created at ledger %d", value, created)), false
	}
	return Issue{}, true
}

func newIssue(subject, code string, err error) Issue {
	return Issue{
		Subject: subject,
		Code:    code,
		Message: err.Error(),
	}
}
