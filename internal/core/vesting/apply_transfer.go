package vesting

import "context"

// TransferRecipient implements spec.md §4.4.4: reassigns the
// recipient principal and its token account. newRecipientTokens must
// be the correctly-derived associated token address for newRecipient
// under the contract's mint, or the instruction fails with
// InvalidAssociatedAccount.
func (e *Engine) TransferRecipient(ctx context.Context, actx ApplyContext, newRecipient, newRecipientTokens Principal) (Result, error) {
	lock := e.lockFor(actx.Escrow)
	lock.Lock()
	defer lock.Unlock()

	c, err := e.Store.Load(ctx, actx.Escrow)
	if err != nil {
		return ResultUninitializedAccount, err
	}
	if c.CanceledAt > 0 {
		return ResultUninitializedAccount, nil
	}

	role := Resolve(actx.Authority, c)
	if !CanTransfer(role, c) {
		return ResultTransferNotAllowed, nil
	}

	wantTokens, err := e.Escrow.DeriveAssociated(newRecipient, c.Principals.Mint)
	if err != nil {
		return ResultInvalidAssociatedAccount, err
	}
	if wantTokens != newRecipientTokens {
		return ResultInvalidAssociatedAccount, nil
	}

	c.Principals.Recipient = newRecipient
	c.Principals.RecipientTokens = newRecipientTokens

	return ResultSuccess, e.Store.Save(ctx, actx.Escrow, c)
}
