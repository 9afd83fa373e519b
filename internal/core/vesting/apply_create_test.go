package vesting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strmfi/vestd/internal/bridge"
	"github.com/strmfi/vestd/internal/core/vesting"
)

// memStore is a minimal in-memory vesting.ContractStore for tests.
type memStore struct {
	m map[vesting.Principal]*vesting.Contract
}

func newMemStore() *memStore {
	return &memStore{m: make(map[vesting.Principal]*vesting.Contract)}
}

func (s *memStore) Load(ctx context.Context, escrow vesting.Principal) (*vesting.Contract, error) {
	c, ok := s.m[escrow]
	if !ok {
		return nil, vesting.ErrContractNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) Save(ctx context.Context, escrow vesting.Principal, c *vesting.Contract) error {
	cp := *c
	s.m[escrow] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, escrow vesting.Principal) error {
	delete(s.m, escrow)
	return nil
}

func principal(b byte) vesting.Principal {
	var p vesting.Principal
	p[0] = b
	return p
}

type testEnv struct {
	engine   *vesting.Engine
	store    *memStore
	ledger   *bridge.InProcessLedger
	clock    *testClock
	deriver  bridge.Deriver
	contract vesting.Principal // escrow address of the one stream created by mustCreate
}

type testClock struct{ now int64 }

func (c *testClock) Now() int64 { return c.now }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	ledger := bridge.NewInProcessLedger()
	clock := &testClock{now: 900}
	deriver := bridge.NewDeriver()

	engine := vesting.NewEngine(store, ledger, clock, deriver, bridge.StaticRentSizer{}, nil)
	return &testEnv{engine: engine, store: store, ledger: ledger, clock: clock, deriver: deriver}
}

func defaultParams() vesting.CreateParams {
	return vesting.CreateParams{
		StartTime:          1_000,
		Period:              1,
		AmountPerPeriod:     1_000_000,
		NetAmountDeposited:  2_000_000_000,
		CancelableBySender:  true,
		CanTopup:            true,
	}
}

// mustCreate funds the sender, creates a contract, and returns its
// resolved escrow address.
func (e *testEnv) mustCreate(t *testing.T, contractID vesting.Principal, params vesting.CreateParams, principals vesting.Principals) vesting.Principal {
	t.Helper()

	gross := params.NetAmountDeposited*2 + 1_000 // generous headroom for fees
	e.ledger.Credit(principals.Mint, principals.SenderTokens, gross)

	req := vesting.CreateRequest{Params: params, Principals: principals, Sender: principals.Sender}
	res, err := e.engine.Create(context.Background(), vesting.ApplyContext{
		Now: e.clock.now, Authority: principals.Sender, Escrow: contractID,
	}, req)
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "create failed: %v", res)

	escrow, err := e.deriver.DeriveEscrow(vesting.VersionCurrent, contractID)
	require.NoError(t, err)
	return escrow
}

func basicPrincipals() vesting.Principals {
	return vesting.Principals{
		Sender:                   principal(1),
		SenderTokens:             principal(11),
		Recipient:                principal(2),
		RecipientTokens:          principal(12),
		Mint:                     principal(3),
		StreamflowTreasury:       principal(4),
		StreamflowTreasuryTokens: principal(14),
		Partner:                  principal(5),
		PartnerTokens:            principal(15),
	}
}

func TestCreate_Success(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()

	escrow := env.mustCreate(t, principal(99), params, principals)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	require.Equal(t, vesting.VersionCurrent, c.Version)
	require.Equal(t, vesting.Magic, c.Magic)

	gross, err := c.GrossAmount()
	require.NoError(t, err)
	bal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, escrow)
	require.NoError(t, err)
	require.Equal(t, gross, bal)
}

func TestCreate_RejectsDuplicateSlot(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	contractID := principal(99)

	env.mustCreate(t, contractID, params, principals)

	req := vesting.CreateRequest{Params: params, Principals: principals, Sender: principals.Sender}
	res, err := env.engine.Create(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: contractID,
	}, req)
	require.Error(t, err)
	require.Equal(t, vesting.ResultInvalidMetadata, res)
}

func TestCreate_RejectsInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()

	req := vesting.CreateRequest{Params: params, Principals: principals, Sender: principals.Sender}
	res, err := env.engine.Create(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: principal(99),
	}, req)
	require.Error(t, err)
	require.Equal(t, vesting.ResultInvalidDeposit, res)
}

func TestCreate_RejectsBadTimestamps(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.StartTime = env.clock.now - 1 // now >= start_time is invalid

	env.ledger.Credit(principals.Mint, principals.SenderTokens, 1<<40)
	req := vesting.CreateRequest{Params: params, Principals: principals, Sender: principals.Sender}
	res, _ := env.engine.Create(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: principal(99),
	}, req)
	require.Equal(t, vesting.ResultInvalidTimestamps, res)
}

func TestCreate_FeeFloorApplied(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()

	escrow := env.mustCreate(t, principal(1), params, principals)
	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)

	// No oracle configured: falls back to (0, 0.25), both below the
	// 0.5% floor, so both percentages clamp to the floor.
	require.Equal(t, vesting.FeePercentFloor, c.StreamflowFeePercent)
	require.Equal(t, vesting.FeePercentFloor, c.PartnerFeePercent)
}
