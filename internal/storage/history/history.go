// Package history stores applied transactions in an embedded SQLite
// database for later lookup over the RPC interface.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction hash is not in the store.
var ErrNotFound = errors.New("history: transaction not found")

// Record is one applied or rejected transaction as stored.
type Record struct {
	Hash      string
	Account   string
	TxType    string
	Result    string
	Applied   bool
	LedgerSeq uint64
	CloseTime int64
	TxJSON    string
	MetaJSON  string
}

// Store is a transaction history backed by SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	hash        TEXT PRIMARY KEY,
	account     TEXT NOT NULL,
	tx_type     TEXT NOT NULL,
	result      TEXT NOT NULL,
	applied     INTEGER NOT NULL,
	ledger_seq  INTEGER NOT NULL,
	close_time  INTEGER NOT NULL,
	tx_json     TEXT NOT NULL,
	meta_json   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account, ledger_seq);
CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(ledger_seq);
`

// Open opens (and if needed creates) a history store at path.
// Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one processed transaction.
func (s *Store) Record(ctx context.Context, r *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(hash, account, tx_type, result, applied, ledger_seq, close_time, tx_json, meta_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Hash, r.Account, r.TxType, r.Result, boolToInt(r.Applied),
		r.LedgerSeq, r.CloseTime, r.TxJSON, r.MetaJSON)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", r.Hash, err)
	}
	return nil
}

// ByHash returns the transaction with the given hash.
func (s *Store) ByHash(ctx context.Context, hash string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, account, tx_type, result, applied, ledger_seq, close_time, tx_json, meta_json
		FROM transactions WHERE hash = ?`, hash)
	return scanRecord(row)
}

// ByAccount returns up to limit transactions submitted by an account,
// newest first.
func (s *Store) ByAccount(ctx context.Context, account string, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, account, tx_type, result, applied, ledger_seq, close_time, tx_json, meta_json
		FROM transactions WHERE account = ?
		ORDER BY ledger_seq DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query account %s: %w", account, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Latest returns up to limit most recently processed transactions.
func (s *Store) Latest(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, account, tx_type, result, applied, ledger_seq, close_time, tx_json, meta_json
		FROM transactions
		ORDER BY ledger_seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query latest: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the number of stored transactions.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	r := &Record{}
	var applied int
	err := row.Scan(&r.Hash, &r.Account, &r.TxType, &r.Result, &applied,
		&r.LedgerSeq, &r.CloseTime, &r.TxJSON, &r.MetaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Applied = applied != 0
	return r, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
