package vesting

// Version selects which escrow-derivation scheme (spec.md §4.4.6) a
// contract's escrow address was produced with. New contracts are
// always created at VersionCurrent; older records keep whatever
// version they were created with so they remain cancelable.
type Version uint8

const (
	VersionLegacy  Version = 1
	VersionCurrent Version = 2
)

// Magic identifies a persisted Contract record as belonging to this
// protocol, guarding against decoding an unrelated blob (spec.md §6.3).
const Magic uint64 = 0x53545246_56455354 // "STRFVEST"

// Contract is the mutable per-stream ledger (spec.md §3.2). It embeds
// the immutable CreateParams snapshot it was created or last
// topped-up with, plus the three ledgers (recipient, treasury fee,
// partner fee) and the ten principals.
type Contract struct {
	Version   Version
	Magic     uint64
	CreatedAt int64

	Params  CreateParams
	EndTime int64

	AmountWithdrawn  uint64
	LastWithdrawnAt  int64
	CanceledAt       int64

	StreamflowFeeTotal     uint64
	StreamflowFeeWithdrawn uint64
	StreamflowFeePercent   float64

	PartnerFeeTotal     uint64
	PartnerFeeWithdrawn uint64
	PartnerFeePercent   float64

	Principals Principals
}

// GrossAmount is net + treasury fee + partner fee: the total tokens
// the escrow should hold if nothing has been withdrawn (spec.md §4.2).
func (c *Contract) GrossAmount() (uint64, error) {
	sum, err := checkedAdd(c.Params.NetAmountDeposited, c.StreamflowFeeTotal)
	if err != nil {
		return 0, err
	}
	return checkedAdd(sum, c.PartnerFeeTotal)
}

// heldBalance is the balance the escrow should be holding right now:
// gross deposited minus everything already paid out of all three
// ledgers.
func (c *Contract) heldBalance() (uint64, error) {
	gross, err := c.GrossAmount()
	if err != nil {
		return 0, err
	}
	withdrawn, err := checkedAdd(c.AmountWithdrawn, c.StreamflowFeeWithdrawn)
	if err != nil {
		return 0, err
	}
	withdrawn, err = checkedAdd(withdrawn, c.PartnerFeeWithdrawn)
	if err != nil {
		return 0, err
	}
	return saturatingSub(gross, withdrawn), nil
}

// SyncBalance compares balance against the escrow's expected held
// balance; any excess is treated as an implicit top-up (spec.md §4.2).
// Only meaningful when Params.CanTopup is true: it is a no-op returning
// ResultSuccess when top-ups are disabled, and withdraw/cancel call it
// only for contracts with CanTopup set.
func (c *Contract) SyncBalance(now int64, balance uint64) (Result, error) {
	if !c.Params.CanTopup {
		return ResultSuccess, nil
	}

	held, err := c.heldBalance()
	if err != nil {
		return ResultArithmeticOverflow, err
	}

	deposit := ExternalDeposit(balance, held, 0)
	if deposit == 0 {
		return ResultSuccess, nil
	}

	return c.Deposit(now, deposit)
}

// Deposit applies a gross deposit of gross_in tokens to the contract's
// three ledgers, splitting by the currently-stored fee percentages and
// recomputing EndTime (spec.md §4.2).
//
// Per the REDESIGN decision recorded in SPEC_FULL.md §4, the
// partner addition is taken from PartnerFeePercent and the treasury
// addition from StreamflowFeePercent — the source's conflation of the
// two is not reproduced.
func (c *Contract) Deposit(now int64, grossIn uint64) (Result, error) {
	if !c.Params.CanTopup {
		return ResultTopupDisabled, nil
	}
	if now >= c.EndTime {
		return ResultStreamClosed, nil
	}

	partnerAdd, err := percentOf(grossIn, c.PartnerFeePercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	strmAdd, err := percentOf(grossIn, c.StreamflowFeePercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}

	feeSum, err := checkedAdd(partnerAdd, strmAdd)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	if feeSum > grossIn {
		return ResultArithmeticOverflow, ErrOverflow
	}
	netAdd := grossIn - feeSum

	if c.Params.NetAmountDeposited, err = checkedAdd(c.Params.NetAmountDeposited, netAdd); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.PartnerFeeTotal, err = checkedAdd(c.PartnerFeeTotal, partnerAdd); err != nil {
		return ResultArithmeticOverflow, err
	}
	if c.StreamflowFeeTotal, err = checkedAdd(c.StreamflowFeeTotal, strmAdd); err != nil {
		return ResultArithmeticOverflow, err
	}

	c.EndTime = c.Params.CalculateEndTime()

	return ResultSuccess, nil
}

// recipientAvailable, streamflowAvailable and partnerAvailable apply
// Available to each of the contract's three ledgers; the recipient's
// is computed at identity (100%) per spec.md §4.1.
func (c *Contract) recipientAvailable(now int64) (uint64, error) {
	return Available(now, c.Params, c.EndTime, c.Params.NetAmountDeposited, c.AmountWithdrawn, 100)
}

func (c *Contract) streamflowAvailable(now int64) (uint64, error) {
	return Available(now, c.Params, c.EndTime, c.StreamflowFeeTotal, c.StreamflowFeeWithdrawn, c.StreamflowFeePercent)
}

func (c *Contract) partnerAvailable(now int64) (uint64, error) {
	return Available(now, c.Params, c.EndTime, c.PartnerFeeTotal, c.PartnerFeeWithdrawn, c.PartnerFeePercent)
}

// checkInvariants verifies I1 and I2 hold (no ledger has paid out more
// than its total); used in tests and by Withdraw after it mutates the
// ledgers.
func (c *Contract) checkInvariants() error {
	if c.AmountWithdrawn > c.Params.NetAmountDeposited {
		return ErrInvariantViolated
	}
	if c.StreamflowFeeWithdrawn > c.StreamflowFeeTotal {
		return ErrInvariantViolated
	}
	if c.PartnerFeeWithdrawn > c.PartnerFeeTotal {
		return ErrInvariantViolated
	}
	return nil
}
