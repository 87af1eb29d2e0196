// Package sqlitestate keeps hook state, the ledger header and receipts in a
// single SQLite file.
package sqlitestate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"

	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/receiptpb"
)

//go:embed sqlmigrations/*.sql
var sqlMigrations embed.FS

const (
	stateTableName    = "hook_state"
	headerTableName   = "ledger_header"
	receiptsTableName = "receipts"
)

type Store struct {
	db *sql.DB
}

// OpenOptions tunes the connection. WAL switches the file to write-ahead
// logging with synchronous=NORMAL, which lets readers run while a ledger
// is being closed.
type OpenOptions struct {
	WAL bool
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runSQLMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin takes the write lock up front (BEGIN IMMEDIATE), so another
// process sharing the file waits on busy_timeout instead of failing half
// way through a ledger.
func (s *Store) Begin(ctx context.Context) (ledger.StateTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, lockError("begin state transaction", err)
	}
	header, err := readHeader(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, lockError("begin state transaction", err)
	}
	return &storeTx{tx: tx, base: header}, nil
}

func (s *Store) GetState(ctx context.Context, key []byte) ([]byte, error) {
	return getState(ctx, s.db, key)
}

func (s *Store) Latest(ctx context.Context) (domain.LedgerInfo, error) {
	return readHeader(ctx, s.db)
}

func (s *Store) ListReceipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error) {
	builder := sq.Select("body").From(receiptsTableName).OrderBy("ledger_seq DESC")
	if query.MemoHash != "" {
		builder = builder.Where(sq.Eq{"memo_hash": query.MemoHash})
	}
	if query.Status != domain.OutcomeUnknown {
		builder = builder.Where(sq.Eq{"status": int(query.Status)})
	}
	if query.Limit > 0 {
		builder = builder.Limit(uint64(query.Limit))
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build receipts query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipt, err := receiptpb.Decode(body)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return receipts, nil
}

func (s *Store) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if !opts.WAL {
		return nil
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readHeader(ctx context.Context, q queryer) (domain.LedgerInfo, error) {
	stmt, args, err := sq.Select("sequence", "closed_at", "state_entries").
		From(headerTableName).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return domain.LedgerInfo{}, fmt.Errorf("build header query: %w", err)
	}

	var info domain.LedgerInfo
	var closedAt int64
	if err := q.QueryRowContext(ctx, stmt, args...).Scan(&info.Sequence, &closedAt, &info.StateEntries); err != nil {
		return domain.LedgerInfo{}, fmt.Errorf("read ledger header: %w", err)
	}
	if closedAt > 0 {
		info.ClosedAt = time.Unix(0, closedAt).UTC()
	}
	return info, nil
}

func getState(ctx context.Context, q queryer, key []byte) ([]byte, error) {
	stmt, args, err := sq.Select("value").From(stateTableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build state query: %w", err)
	}

	var value []byte
	if err := q.QueryRowContext(ctx, stmt, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	return value, nil
}

type storeTx struct {
	tx   *sql.Tx
	base domain.LedgerInfo
}

func (t *storeTx) Ledger(ctx context.Context) (domain.LedgerInfo, error) {
	return t.base, nil
}

func (t *storeTx) GetState(ctx context.Context, key []byte) ([]byte, error) {
	return getState(ctx, t.tx, key)
}

func (t *storeTx) PutState(ctx context.Context, key, value []byte) error {
	_, err := sq.Insert(stateTableName).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return lockError("write state", err)
	}
	return nil
}

func (t *storeTx) AppendReceipt(ctx context.Context, receipt domain.Receipt) error {
	_, err := sq.Insert(receiptsTableName).
		Columns("ledger_seq", "tx_id", "tx_hash", "memo_hash", "status", "code", "body").
		Values(
			receipt.LedgerSeq,
			receipt.TxID,
			receipt.TxHash,
			receipt.MemoHash,
			int(receipt.Outcome.Status),
			receipt.Outcome.Code,
			receiptpb.Encode(receipt),
		).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: ledger %d already closed", domain.ErrLedgerChanged, receipt.LedgerSeq)
		}
		return lockError("append receipt", err)
	}
	return nil
}

// CloseLedger advances the header only if no other writer moved it since
// Begin.
func (t *storeTx) CloseLedger(ctx context.Context, info domain.LedgerInfo) error {
	result, err := sq.Update(headerTableName).
		Set("sequence", info.Sequence).
		Set("closed_at", info.ClosedAt.UnixNano()).
		Set("state_entries", info.StateEntries).
		Where(sq.Eq{"id": 1, "sequence": t.base.Sequence}).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return lockError("close ledger", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if affected == 0 {
		return domain.ErrLedgerChanged
	}
	return nil
}

func (t *storeTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.tx.Commit(); err != nil {
		return lockError("commit ledger", err)
	}
	return nil
}

func (t *storeTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func runSQLMigrations(db *sql.DB) error {
	m := &migrate.AssetMigrationSource{
		Asset: sqlMigrations.ReadFile,
		AssetDir: func(path string) ([]string, error) {
			entries, err := sqlMigrations.ReadDir(path)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			return names, nil
		},
		Dir: "sqlmigrations",
	}
	_, err := migrate.ExecMax(db, "sqlite3", m, migrate.Up, 0)
	return err
}

func isConstraintError(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isBusyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// lockError reports a busy database as a ledger conflict so the ledger
// service retries it.
func lockError(op string, err error) error {
	if isBusyError(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrLedgerChanged, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// dsn asks the driver to open every transaction with BEGIN IMMEDIATE.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate"
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
