package vesting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// Scenario 7 (spec.md §8): transfer gating.
func TestTransferRecipient_RejectedWhenNotTransferable(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.TransferableByRecipient = false
	escrow := env.mustCreate(t, principal(7), params, principals)

	newRecipient := principal(50)
	newTokens, err := env.deriver.DeriveAssociated(newRecipient, principals.Mint)
	require.NoError(t, err)

	env.clock.now = params.StartTime + 1
	res, err := env.engine.TransferRecipient(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Recipient, Escrow: escrow,
	}, newRecipient, newTokens)
	require.NoError(t, err)
	require.Equal(t, vesting.ResultTransferNotAllowed, res)
}

func TestTransferRecipient_SucceedsBySender(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.TransferableBySender = true
	params.TransferableByRecipient = false
	escrow := env.mustCreate(t, principal(7), params, principals)

	newRecipient := principal(50)
	newTokens, err := env.deriver.DeriveAssociated(newRecipient, principals.Mint)
	require.NoError(t, err)

	env.clock.now = params.StartTime + 1
	res, err := env.engine.TransferRecipient(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	}, newRecipient, newTokens)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	c, err := env.store.Load(context.Background(), escrow)
	require.NoError(t, err)
	require.Equal(t, newRecipient, c.Principals.Recipient)
	require.Equal(t, newTokens, c.Principals.RecipientTokens)
}

func TestTransferRecipient_RejectsWrongAssociatedAccount(t *testing.T) {
	env := newTestEnv(t)
	principals := basicPrincipals()
	params := defaultParams()
	params.TransferableBySender = true
	escrow := env.mustCreate(t, principal(7), params, principals)

	env.clock.now = params.StartTime + 1
	res, err := env.engine.TransferRecipient(context.Background(), vesting.ApplyContext{
		Now: env.clock.now, Authority: principals.Sender, Escrow: escrow,
	}, principal(50), principal(51) /* not the derived associated address */)
	require.NoError(t, err)
	require.Equal(t, vesting.ResultInvalidAssociatedAccount, res)
}
