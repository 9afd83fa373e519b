package vesting

import "context"

// Withdraw implements spec.md §4.4.2. If Params.CanTopup, the escrow
// balance is synced first, treating any externally-appeared tokens as
// an implicit top-up. The full streamflow and partner ledgers are
// always swept regardless of the recipient's requested amount — this
// is preserved verbatim from the source per spec.md §9.
//
// amount == 0 is shorthand for "withdraw everything currently available".
func (e *Engine) Withdraw(ctx context.Context, actx ApplyContext, amount uint64) (Result, error) {
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
	if !CanWithdraw(role, c, amount) {
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

	withdrawAmount := amount
	if withdrawAmount == 0 {
		withdrawAmount = recipientAvail
	}
	if withdrawAmount > recipientAvail {
		return ResultAmountMoreThanAvailable, nil
	}

	if withdrawAmount > 0 {
		if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.EscrowTokens, c.Principals.RecipientTokens, withdrawAmount); err != nil {
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

	if c.AmountWithdrawn, err = checkedAdd(c.AmountWithdrawn, withdrawAmount); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.StreamflowFeeWithdrawn, err = checkedAdd(c.StreamflowFeeWithdrawn, strmAvail); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.PartnerFeeWithdrawn, err = checkedAdd(c.PartnerFeeWithdrawn, partnerAvail); err != nil {
		return ResultArithmeticOverflow, err
	}
	c.LastWithdrawnAt = actx.Now

	if err := c.checkInvariants(); err != nil {
		return ResultArithmeticOverflow, err
	}

	if actx.Now >= c.EndTime && c.fullyDrained() {
		if err := e.closeEscrow(ctx, c); err != nil {
			return ResultInvalidEscrowAccount, err
		}
		return ResultSuccess, e.Store.Delete(ctx, actx.Escrow)
	}

	return ResultSuccess, e.Store.Save(ctx, actx.Escrow, c)
}

// fullyDrained reports whether all three ledgers have paid out
// everything owed — the condition spec.md §3.4 names for entering
// Settled-Expired.
func (c *Contract) fullyDrained() bool {
	return c.AmountWithdrawn == c.Params.NetAmountDeposited &&
		c.StreamflowFeeWithdrawn == c.StreamflowFeeTotal &&
		c.PartnerFeeWithdrawn == c.PartnerFeeTotal
}
