// Package gitstate keeps hook state in a bare git repository. Every closed
// ledger is one commit on refs/heads/main holding the state entries, the
// receipt for that ledger and the ledger header file.
package gitstate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/receiptpb"
)

const mainRefName = "refs/heads/main"

var ErrRepoNotFound = errors.New("state repository not found")

type Store struct {
	path string
	repo *git.Repository
}

// Init creates a bare repository at path with a genesis commit that holds
// an empty ledger header.
func Init(ctx context.Context, path string) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create state repo dir: %w", err)
	}

	repo, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{Bare: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return nil, fmt.Errorf("state repository already exists: %w", err)
		}
		return nil, fmt.Errorf("init state repo: %w", err)
	}

	header, err := renderLedger(domain.LedgerInfo{})
	if err != nil {
		return nil, err
	}
	blobHash, err := writeBlob(repo.Storer, header)
	if err != nil {
		return nil, err
	}
	treeHash, err := updateTree(repo.Storer, plumbing.ZeroHash, domain.LedgerFile, blobHash)
	if err != nil {
		return nil, err
	}
	commitHash, err := writeCommit(repo.Storer, treeHash, nil, "memostamp genesis", domain.LedgerInfo{})
	if err != nil {
		return nil, err
	}
	ref := plumbing.NewHashReference(plumbing.ReferenceName(mainRefName), commitHash)
	if err := repo.Storer.SetReference(ref); err != nil {
		return nil, fmt.Errorf("write main ref: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.ReferenceName(mainRefName))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("write HEAD: %w", err)
	}

	return &Store{path: path, repo: repo}, nil
}

func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, path)
		}
		return nil, fmt.Errorf("open state repo: %w", err)
	}
	return &Store{path: path, repo: repo}, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Begin(ctx context.Context) (ledger.StateTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baseRef, baseTree, baseTreeHash, err := loadBaseTree(s.repo)
	if err != nil {
		return nil, err
	}
	info, err := readLedger(baseTree)
	if err != nil {
		return nil, err
	}
	return &storeTx{
		repo:     s.repo,
		baseRef:  baseRef,
		baseTree: baseTree,
		treeHash: baseTreeHash,
		base:     info,
		pending:  make(map[string][]byte),
	}, nil
}

func (s *Store) GetState(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, tree, _, err := loadBaseTree(s.repo)
	if err != nil {
		return nil, err
	}
	return readState(tree, key)
}

func (s *Store) Latest(ctx context.Context) (domain.LedgerInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.LedgerInfo{}, err
	}
	_, tree, _, err := loadBaseTree(s.repo)
	if err != nil {
		return domain.LedgerInfo{}, err
	}
	return readLedger(tree)
}

// ListReceipts walks the receipts tree from the newest ledger backwards.
func (s *Store) ListReceipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error) {
	_, tree, _, err := loadBaseTree(s.repo)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	receiptsTree, err := tree.Tree(domain.ReceiptsRoot)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read receipts tree: %w", err)
	}

	var receipts []domain.Receipt
	for i := len(receiptsTree.Entries) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if query.Limit > 0 && len(receipts) >= query.Limit {
			break
		}
		data, err := s.readBlob(receiptsTree.Entries[i].Hash)
		if err != nil {
			return nil, err
		}
		receipt, err := receiptpb.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode receipt %s: %w", receiptsTree.Entries[i].Name, err)
		}
		if query.MemoHash != "" && receipt.MemoHash != query.MemoHash {
			continue
		}
		if query.Status != domain.OutcomeUnknown && receipt.Outcome.Status != query.Status {
			continue
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	return data, nil
}

func readState(tree *object.Tree, key []byte) ([]byte, error) {
	if tree == nil || len(key) == 0 {
		return nil, domain.ErrStateNotFound
	}
	data, err := readTreeFile(tree, domain.StateEntryPath(key))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}
	return data, nil
}

func readLedger(tree *object.Tree) (domain.LedgerInfo, error) {
	if tree == nil {
		return domain.LedgerInfo{}, nil
	}
	data, err := readTreeFile(tree, domain.LedgerFile)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return domain.LedgerInfo{}, nil
		}
		return domain.LedgerInfo{}, err
	}
	return parseLedger(data)
}
