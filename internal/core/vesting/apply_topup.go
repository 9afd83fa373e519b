package vesting

import "context"

// TopUp implements spec.md §4.4.3. Per the REDESIGN decision recorded
// in SPEC_FULL.md §4: amount is the net addition to the recipient's
// ledger; the sender additionally pays partner_fee(amount) +
// streamflow_fee(amount), and amount+fees moves from the sender into
// escrow as the gross deposit.
//
// Preconditions: authority must be the sender and must sign;
// Params.CanTopup; now < end_time; amount > 0.
func (e *Engine) TopUp(ctx context.Context, actx ApplyContext, amount uint64) (Result, error) {
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
	if role != RoleSender && role != RoleSenderRecipient {
		return ResultUnauthorized, nil
	}
	if !c.Params.CanTopup {
		return ResultTopupDisabled, nil
	}
	if actx.Now >= c.EndTime {
		return ResultStreamClosed, nil
	}
	if amount == 0 {
		return ResultAmountIsZero, nil
	}

	partnerAdd, err := percentOf(amount, c.PartnerFeePercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	strmAdd, err := percentOf(amount, c.StreamflowFeePercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	fees, err := checkedAdd(partnerAdd, strmAdd)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	grossIn, err := checkedAdd(amount, fees)
	if err != nil {
		return ResultArithmeticOverflow, err
	}

	if err := e.Transfer.Transfer(ctx, c.Principals.Mint, c.Principals.SenderTokens, c.Principals.EscrowTokens, grossIn); err != nil {
		return ResultAccountsNotWritable, err
	}

	if c.Params.NetAmountDeposited, err = checkedAdd(c.Params.NetAmountDeposited, amount); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.PartnerFeeTotal, err = checkedAdd(c.PartnerFeeTotal, partnerAdd); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.StreamflowFeeTotal, err = checkedAdd(c.StreamflowFeeTotal, strmAdd); err != nil {
		return ResultArithmeticOverflow, err
	}
	c.EndTime = c.Params.CalculateEndTime()

	return ResultSuccess, e.Store.Save(ctx, actx.Escrow, c)
}
