package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/strmfi/vestd/internal/core/vesting"
)

type tokenAccountKey struct {
	mint    vesting.Principal
	account vesting.Principal
}

// InProcessLedger is a TokenTransfer backed by an in-memory balance
// table, keyed by (mint, account). It stands in for an on-chain token
// program in a single-process deployment: the CLI's submit path and
// RPC's instruction methods share one ledger instance so a deposit
// made through one surface is visible to the other.
type InProcessLedger struct {
	mu       sync.Mutex
	balances map[tokenAccountKey]uint64
}

// NewInProcessLedger returns an empty ledger.
func NewInProcessLedger() *InProcessLedger {
	return &InProcessLedger{balances: make(map[tokenAccountKey]uint64)}
}

// Credit adds amount to account's balance under mint without moving it
// from anywhere — used to seed an account in tests.
func (l *InProcessLedger) Credit(mint, account vesting.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[tokenAccountKey{mint, account}] += amount
}

// Transfer implements vesting.TokenTransfer.
func (l *InProcessLedger) Transfer(ctx context.Context, mint, from, to vesting.Principal, amount uint64) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromKey := tokenAccountKey{mint, from}
	if l.balances[fromKey] < amount {
		return fmt.Errorf("bridge: account %x underfunded for transfer of %d", from, amount)
	}
	l.balances[fromKey] -= amount
	l.balances[tokenAccountKey{mint, to}] += amount
	return nil
}

// BalanceOf implements vesting.TokenTransfer.
func (l *InProcessLedger) BalanceOf(ctx context.Context, mint, account vesting.Principal) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[tokenAccountKey{mint, account}], nil
}

var _ vesting.TokenTransfer = (*InProcessLedger)(nil)
