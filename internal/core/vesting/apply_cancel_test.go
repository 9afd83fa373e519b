package vesting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// Scenario 5 (spec.md §8): cancel before end.
func TestCancel_RecipientCannotCancelWhenNotCancelable(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.CancelableBySender = true
	params.CancelableByRecipient = false
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 200
	res, err := env.engine.Cancel(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	})
	require.NoError(t, err)
	require.Equal(t, vesting.ResultUnauthorized, res)
}

func TestCancel_SenderSettlesAllThreeLedgersAndRefunds(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.CancelableBySender = true
	escrow := env.mustCreate(t, principal(7), params, principals)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	require.Greater(t, c.EndTime, params.StartTime+200)

	env.clock.now = params.StartTime + 200
	res, err := env.engine.Cancel(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	recipientBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.RecipientTokens)
	require.NoError(t, err)
	require.Greater(t, recipientBal, uint64(0))

	strmBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.StreamflowTreasuryTokens)
	require.NoError(t, err)
	require.Greater(t, strmBal, uint64(0))

	partnerBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.PartnerTokens)
	require.NoError(t, err)
	require.Greater(t, partnerBal, uint64(0))

	senderBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.SenderTokens)
	require.NoError(t, err)
	require.Greater(t, senderBal, uint64(0), "remainder must be refunded to the sender")

	escrowBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, escrow)
	require.NoError(t, err)
	require.Zero(t, escrowBal)

	_, err = env.store.Load(context.Background(), escrow)
	require.ErrorIs(t, err, vesting.ErrContractNotFound)
}

// Scenario 6 (spec.md §8): expired cancel by third party.
func TestCancel_AnyAuthorityAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.CancelableBySender = false
	params.CancelableByRecipient = false
	escrow := env.mustCreate(t, principal(7), params, principals)

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	env.clock.now = c.EndTime

	res, err := env.engine.Cancel(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principal(200), /* arbitrary third party */ Escrow: escrow,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	recipientBal, err := env.ledger.BalanceOf(context.Background(), principals.Mint, principals.RecipientTokens)
	require.NoError(t, err)
	require.Equal(t, params.NetAmountDeposited, recipientBal)
}

func TestCancel_AlreadyCanceledIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.CancelableBySender = true
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 10
	res, err := env.engine.Cancel(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	res, err = env.engine.Cancel(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	})
	require.ErrorIs(t, err, vesting.ErrContractNotFound)
	require.Equal(t, vesting.ResultUninitializedAccount, res)
}
