// Package postgres implements ledgerindex.Ledger over lib/pq,
// appending one row per settlement effect to a single audit table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/strmfi/vestd/internal/core/vesting"
	"github.com/strmfi/vestd/internal/storage/ledgerindex"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlement_effects (
	id           BIGSERIAL PRIMARY KEY,
	escrow       BYTEA NOT NULL,
	authority    BYTEA NOT NULL,
	instruction  SMALLINT NOT NULL,
	amount       NUMERIC(20, 0) NOT NULL,
	result       INTEGER NOT NULL,
	applied_at   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS settlement_effects_escrow_idx ON settlement_effects (escrow, id DESC);
`

// Ledger is a postgres-backed ledgerindex.Ledger.
type Ledger struct {
	db *sql.DB
}

// Open connects to dsn and ensures the schema exists.
func Open(dsn string) (*Ledger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledgerindex/postgres: opening: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledgerindex/postgres: migrating schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Record(ctx context.Context, e ledgerindex.Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO settlement_effects (escrow, authority, instruction, amount, result, applied_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Escrow[:], e.Authority[:], int16(e.Instruction), fmt.Sprintf("%d", e.Amount), int(e.Result), e.AppliedAt)
	if err != nil {
		return fmt.Errorf("ledgerindex/postgres: recording: %w", err)
	}
	return nil
}

func (l *Ledger) EntriesForEscrow(ctx context.Context, escrow vesting.Principal, limit int) ([]ledgerindex.Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, escrow, authority, instruction, amount, result, applied_at
		 FROM settlement_effects WHERE escrow = $1 ORDER BY id DESC LIMIT $2`,
		escrow[:], limit)
	if err != nil {
		return nil, fmt.Errorf("ledgerindex/postgres: querying: %w", err)
	}
	defer rows.Close()

	var out []ledgerindex.Entry
	for rows.Next() {
		var (
			e         ledgerindex.Entry
			escrowB   []byte
			authB     []byte
			amountStr string
			tag       int16
			result    int
		)
		if err := rows.Scan(&e.ID, &escrowB, &authB, &tag, &amountStr, &result, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("ledgerindex/postgres: scanning: %w", err)
		}
		copy(e.Escrow[:], escrowB)
		copy(e.Authority[:], authB)
		e.Instruction = vesting.Tag(tag)
		e.Result = vesting.Result(result)
		if _, err := fmt.Sscanf(amountStr, "%d", &e.Amount); err != nil {
			return nil, fmt.Errorf("ledgerindex/postgres: parsing amount: %w", err)
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
