package vesting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strmfi/vestd/internal/core/vesting"
)

func TestWithdraw_RecipientGetsPartialAmount(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 50 // 50 periods elapsed

	res, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	}, 1_000_000)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	bal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.RecipientTokens)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), bal)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), c.AmountWithdrawn)
}

// Streamflow-fee sweep on withdraw always drains the full
// streamflow_available and partner_available regardless of the
// recipient's requested amount (spec.md §4.4.2, §9).
func TestWithdraw_AlwaysSweepsFullFeeLedgers(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 50

	_, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	}, 0) // 0 == withdraw everything currently available to the recipient
	require.NoError(t, err)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)

	strmBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.StreamflowTreasuryTokens)
	require.NoError(t, err)
	partnerBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.PartnerTokens)
	require.NoError(t, err)

	require.Equal(t, c.StreamflowFeeWithdrawn, strmBal)
	require.Equal(t, c.PartnerFeeWithdrawn, partnerBal)
	require.Greater(t, strmBal, uint64(0))
	require.Greater(t, partnerBal, uint64(0))
}

func TestWithdraw_RejectsMoreThanAvailable(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 1
	res, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	}, params.NetAmountDeposited)
	require.NoError(t, err)
	require.Equal(t, vesting.ResultAmountMoreThanAvailable, res)
}

func TestWithdraw_SenderCannotWithdrawWithoutAutomaticFlag(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 1
	res, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, vesting.ResultUnauthorized, res)
}

func TestWithdraw_TreasurySweepOnly(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 10
	res, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.StreamflowTreasury, Escrow: escrow,
	}, 0)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	res, err = env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.StreamflowTreasury, Escrow: escrow,
	}, 5)
	require.NoError(t, err)
	require.Equal(t, vesting.ResultUnauthorized, res)
}

func TestWithdraw_FullSettlementClosesEscrow(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.NetAmountDeposited = 10 // tiny so the schedule completes fast
	params.AmountPerPeriod = 10
	escrow := env.mustCreate(t, principal(7), params, principals)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	env.clock.now = c.EndTime

	res, err := env.engine.Withdraw(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	}, 0)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	_, err = env.store.Load(context.Background(), escrow)
	require.ErrorIs(t, err, vesting.ErrContractNotFound)
}
