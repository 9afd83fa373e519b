package vesting

// FeePercentFloor is the legacy minimum a treasury or partner fee
// percentage is clamped to. spec.md §4.1.1 flags the source's
// max(percent, 0.5) as possibly a misnamed "cap" — it is implemented
// here as the floor the source actually computes; see SPEC_FULL.md §4.
const FeePercentFloor = 0.5

// ClampFeePercent applies the legacy minimum-fee floor.
func ClampFeePercent(percent float64) float64 {
	if percent < FeePercentFloor {
		return FeePercentFloor
	}
	return percent
}

// Available implements spec.md §4.1: the amount of a ledger of size
// total (already scaled by feePercent where applicable) eligible for
// release at wall-clock now, given withdrawn has already been paid.
//
// feePercent is applied with identity (100) for the recipient's own
// ledger; Contract.streamflowAvailable and Contract.partnerAvailable
// pass the fee ledgers' stored percentage.
func Available(now int64, p CreateParams, endTime int64, total, withdrawn uint64, feePercent float64) (uint64, error) {
	if now < p.StartTime || (p.Cliff != 0 && now < p.Cliff) || total == 0 || total == withdrawn {
		return 0, nil
	}

	if now >= endTime {
		return saturatingSub(total, withdrawn), nil
	}

	cliffEff := p.cliffEffective()

	var streamAccrued uint64
	if now >= cliffEff {
		elapsedPeriods := uint64(now-cliffEff) / uint64(p.Period)
		product, err := checkedMulU64(elapsedPeriods, p.AmountPerPeriod)
		if err != nil {
			return 0, err
		}
		streamAccrued = product
	}

	var cliffAccrued uint64
	if p.Cliff != 0 && now >= p.Cliff {
		cliffAccrued = p.CliffAmount
	}

	streamComponent, err := percentOf(streamAccrued, feePercent)
	if err != nil {
		return 0, err
	}
	cliffComponent, err := percentOf(cliffAccrued, feePercent)
	if err != nil {
		return 0, err
	}

	gross, err := checkedAdd(streamComponent, cliffComponent)
	if err != nil {
		return 0, err
	}

	avail := saturatingSub(gross, withdrawn)
	if max := saturatingSub(total, withdrawn); avail > max {
		avail = max
	}
	return avail, nil
}

// ExternalDeposit implements spec.md §4.1.2: the positive difference
// between the escrow's actual balance and what it should hold given
// grossExpected already deposited minus withdrawn already paid out.
// Saturates at 0 — preserved verbatim from the source per spec.md §9.
func ExternalDeposit(balance, grossExpected, withdrawn uint64) uint64 {
	expected := saturatingSub(grossExpected, withdrawn)
	return saturatingSub(balance, expected)
}

func checkedMulU64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, ErrOverflow
	}
	return product, nil
}
