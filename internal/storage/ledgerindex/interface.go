// Package ledgerindex is the append-only audit log of settlement
// effects SPEC_FULL.md names: one Entry per applied instruction,
// independent of the contract store that holds current state. The
// vesting engine does not write to it; the daemon opens it and uses it
// only for the readiness check. Two interchangeable SQL backends are
// provided — postgres for production, sqlite for zero-config
// development — selected by config.Database.
package ledgerindex

import (
	"context"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// Entry is one row of the audit log: the effect of applying a single
// instruction against a single escrow.
type Entry struct {
	ID          int64
	Escrow      vesting.Principal
	Authority   vesting.Principal
	Instruction vesting.Tag
	Amount      uint64
	Result      vesting.Result
	AppliedAt   int64
}

// Ledger records and queries settlement effects.
type Ledger interface {
	Record(ctx context.Context, e Entry) error
	EntriesForEscrow(ctx context.Context, escrow vesting.Principal, limit int) ([]Entry, error)
	Ready(ctx context.Context) error
	Close() error
}
