package vesting

import "context"

// Cancel implements spec.md §4.4.5. If now < end_time, the caller
// must pass CanCancel; a contract past its end_time is cancelable by
// anyone (garbage collection).
//
// Effects, in order: sync the balance, pay out each ledger's current
// available amount to its destination, refund whatever remains to the
// sender, then close the escrow (any residual/external balance goes to
// the treasury). No storage reservation is held for the escrow, so none
// is returned.
func (e *Engine) Cancel(ctx context.Context, actx ApplyContext) (Result, error) {
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
	if actx.Now < c.EndTime && !CanCancel(role, c, actx.Now) {
		return ResultUnauthorized, nil
	}

	if c.Params.CanTopup {
		balance, err := e.Transfer.BalanceOf(ctx, c.Principals.Mint, c.Principals.EscrowTokens)
		if err != nil {
			return ResultInvalidEscrowAccount, err
		}
		if res, err := c.SyncBalance(actx.Now, balance); !res.IsSuccess() {
			return res, err
		}
	}

	recipientAvail, err := c.recipientAvailable(actx.Now)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	strmAvail, err := c.streamflowAvailable(actx.Now)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	partnerAvail, err := c.partnerAvailable(actx.Now)
	if err != nil {
		return ResultArithmeticOverflow, err
	}

	if recipientAvail > 0 {
		if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.RecipientTokens, recipientAvail); err != nil {
			return ResultAccountsNotWritable, err
		}
	}
	if strmAvail > 0 {
		if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.StreamflowTreasuryTokens, strmAvail); err != nil {
			return ResultAccountsNotWritable, err
		}
	}
	if partnerAvail > 0 {
		if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.PartnerTokens, partnerAvail); err != nil {
			return ResultAccountsNotWritable, err
		}
	}

	if c.AmountWithdrawn, err = checkedAdd(c.AmountWithdrawn, recipientAvail); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.StreamflowFeeWithdrawn, err = checkedAdd(c.StreamflowFeeWithdrawn, strmAvail); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.PartnerFeeWithdrawn, err = checkedAdd(c.PartnerFeeWithdrawn, partnerAvail); err != nil {
		return ResultArithmeticOverflow, err
	}

	remainingNet := saturatingSub(c.Params.NetAmountDeposited, c.AmountWithdrawn)
	remainingStrm := saturatingSub(c.StreamflowFeeTotal, c.StreamflowFeeWithdrawn)
	remainingPartner := saturatingSub(c.PartnerFeeTotal, c.PartnerFeeWithdrawn)

	remaining, err := checkedAdd(remainingNet, remainingStrm)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	if remaining, err = checkedAdd(remaining, remainingPartner); err != nil {
		return ResultArithmeticOverflow, err
	}

	if remaining > 0 {
		if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.SenderTokens, remaining); err != nil {
			return ResultAccountsNotWritable, err
		}
	}

	c.CanceledAt = actx.Now

	if err := e.closeEscrow(ctx, c); err != nil {
		return ResultInvalidEscrowAccount, err
	}

	return ResultSuccess, e.Store.Delete(ctx, actx.Escrow)
}

// closeEscrow sweeps any residual balance (an external deposit that
// arrived outside the normal top-up path, or dust left by rounding)
// to the treasury. It moves tokens only; no storage reservation is
// released. Called on both natural completion and cancellation
// (spec.md §4.4.6).
func (e *Engine) closeEscrow(ctx context.Context, c *Contract) error {
	residual, err := e.Transfer.BalanceOf(ctx, c.Principals.Mint, c.Principals.EscrowTokens)
	if err != nil {
		return err
	}
	if residual == 0 {
		return nil
	}
	return e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.StreamflowTreasuryTokens, residual)
}
