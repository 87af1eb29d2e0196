package gitstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"

	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/receiptpb"
)

var ErrLedgerNotClosed = errors.New("ledger not closed")

// storeTx builds the next ledger's tree on top of the main ref read at
// Begin. Objects are written eagerly; only Commit moves the ref.
type storeTx struct {
	repo     *git.Repository
	baseRef  *plumbing.Reference
	baseTree *object.Tree
	treeHash plumbing.Hash
	base     domain.LedgerInfo
	closed   *domain.LedgerInfo
	pending  map[string][]byte
}

func (t *storeTx) Ledger(ctx context.Context) (domain.LedgerInfo, error) {
	return t.base, nil
}

func (t *storeTx) GetState(ctx context.Context, key []byte) ([]byte, error) {
	if value, ok := t.pending[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return readState(t.baseTree, key)
}

func (t *storeTx) PutState(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(key) == 0 {
		return fmt.Errorf("write state: empty key")
	}
	blobHash, err := writeBlob(t.repo.Storer, value)
	if err != nil {
		return err
	}
	treeHash, err := updateTree(t.repo.Storer, t.treeHash, domain.StateEntryPath(key), blobHash)
	if err != nil {
		return err
	}
	t.treeHash = treeHash
	t.pending[string(key)] = append([]byte(nil), value...)
	return nil
}

func (t *storeTx) AppendReceipt(ctx context.Context, receipt domain.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	receiptPath := domain.ReceiptPath(receipt.LedgerSeq)
	if t.baseTree != nil {
		if _, err := t.baseTree.File(receiptPath); err == nil {
			return fmt.Errorf("%w: ledger %d already closed", domain.ErrLedgerChanged, receipt.LedgerSeq)
		}
	}

	blobHash, err := writeBlob(t.repo.Storer, receiptpb.Encode(receipt))
	if err != nil {
		return err
	}
	treeHash, err := updateTree(t.repo.Storer, t.treeHash, receiptPath, blobHash)
	if err != nil {
		return err
	}
	t.treeHash = treeHash
	return nil
}

func (t *storeTx) CloseLedger(ctx context.Context, info domain.LedgerInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := renderLedger(info)
	if err != nil {
		return err
	}
	blobHash, err := writeBlob(t.repo.Storer, data)
	if err != nil {
		return err
	}
	treeHash, err := updateTree(t.repo.Storer, t.treeHash, domain.LedgerFile, blobHash)
	if err != nil {
		return err
	}
	t.treeHash = treeHash
	t.closed = &info
	return nil
}

// Commit moves the main ref from the Begin commit to the new one. Another
// writer that moved it first turns into domain.ErrLedgerChanged.
func (t *storeTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.closed == nil {
		return ErrLedgerNotClosed
	}

	message := fmt.Sprintf("memostamp ledger %d", t.closed.Sequence)
	commitHash, err := writeCommit(t.repo.Storer, t.treeHash, t.baseRef, message, *t.closed)
	if err != nil {
		return err
	}

	newRef := plumbing.NewHashReference(plumbing.ReferenceName(mainRefName), commitHash)
	if err := t.repo.Storer.CheckAndSetReference(newRef, t.baseRef); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return domain.ErrLedgerChanged
		}
		return fmt.Errorf("update main ref: %w", err)
	}
	return nil
}

func (t *storeTx) Rollback() error {
	t.pending = nil
	return nil
}
