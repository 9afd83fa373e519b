// Package sqlite implements ledgerindex.Ledger over modernc.org/sqlite,
// the zero-config fallback audit ledger used when no postgres DSN is
// configured (SPEC_FULL.md's dev-mode default).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/strmfi/vestd/internal/core/vesting"
	"github.com/strmfi/vestd/internal/storage/ledgerindex"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlement_effects (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	escrow       BLOB NOT NULL,
	authority    BLOB NOT NULL,
	instruction  INTEGER NOT NULL,
	amount       TEXT NOT NULL,
	result       INTEGER NOT NULL,
	applied_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS settlement_effects_escrow_idx ON settlement_effects (escrow, id DESC);
`

// Ledger is a sqlite-backed ledgerindex.Ledger.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite file at path and ensures
// the schema exists.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledgerindex/sqlite: opening %s: %w", path, err)
	}
	// sqlite serializes writers; a single open connection avoids
	// SQLITE_BUSY under concurrent engine instructions.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledgerindex/sqlite: migrating schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Record(ctx context.Context, e ledgerindex.Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO settlement_effects (escrow, authority, instruction, amount, result, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Escrow[:], e.Authority[:], int64(e.Instruction), fmt.Sprintf("%d", e.Amount), int64(e.Result), e.AppliedAt)
	if err != nil {
		return fmt.Errorf("ledgerindex/sqlite: recording: %w", err)
	}
	return nil
}

func (l *Ledger) EntriesForEscrow(ctx context.Context, escrow vesting.Principal, limit int) ([]ledgerindex.Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, escrow, authority, instruction, amount, result, applied_at
		 FROM settlement_effects WHERE escrow = ? ORDER BY id DESC LIMIT ?`,
		escrow[:], limit)
	if err != nil {
		return nil, fmt.Errorf("ledgerindex/sqlite: querying: %w", err)
	}
	defer rows.Close()

	var out []ledgerindex.Entry
	for rows.Next() {
		var (
			e         ledgerindex.Entry
			escrowB   []byte
			authB     []byte
			amountStr string
			tag       int64
			result    int64
		)
		if err := rows.Scan(&e.ID, &escrowB, &authB, &tag, &amountStr, &result, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("ledgerindex/sqlite: scanning: %w", err)
		}
		copy(e.Escrow[:], escrowB)
		copy(e.Authority[:], authB)
		e.Instruction = vesting.Tag(tag)
		e.Result = vesting.Result(result)
		if _, err := fmt.Sscanf(amountStr, "%d", &e.Amount); err != nil {
			return nil, fmt.Errorf("ledgerindex/sqlite: parsing amount: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *Ledger) Ready(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
