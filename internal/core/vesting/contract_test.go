package vesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestContract() *Contract {
	p := CreateParams{
		StartTime:          1_000,
		Period:              1,
		AmountPerPeriod:     1_000_000,
		NetAmountDeposited:  2_000_000_000,
		CanTopup:            true,
	}
	c := &Contract{
		Version:              VersionCurrent,
		Magic:                Magic,
		CreatedAt:            1_000,
		Params:               p,
		StreamflowFeePercent: 0.25,
		PartnerFeePercent:    0.5,
	}
	strm, err := percentOf(p.NetAmountDeposited, c.StreamflowFeePercent)
	if err != nil {
		panic(err)
	}
	partner, err := percentOf(p.NetAmountDeposited, c.PartnerFeePercent)
	if err != nil {
		panic(err)
	}
	c.StreamflowFeeTotal = strm
	c.PartnerFeeTotal = partner
	c.EndTime = p.CalculateEndTime()
	return c
}

func TestGrossAmount(t *testing.T) {
	c := newTestContract()
	gross, err := c.GrossAmount()
	require.NoError(t, err)
	require.Equal(t, c.Params.NetAmountDeposited+c.StreamflowFeeTotal+c.PartnerFeeTotal, gross)
}

func TestGrossAmount_Overflow(t *testing.T) {
	c := newTestContract()
	c.Params.NetAmountDeposited = ^uint64(0)
	c.StreamflowFeeTotal = 1
	_, err := c.GrossAmount()
	require.ErrorIs(t, err, ErrOverflow)
}

// Scenario 4 (spec.md §8): external deposit sync splits by current
// percentages and grows net_amount_deposited.
func TestSyncBalance_ExternalDeposit(t *testing.T) {
	c := newTestContract()
	held, err := c.heldBalance()
	require.NoError(t, err)

	res, err := c.SyncBalance(c.Params.StartTime, held+1_000_000_000) // +10 tokens externally
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	strmAdd, _ := percentOf(1_000_000_000, 0.25)
	partnerAdd, _ := percentOf(1_000_000_000, 0.5)
	netAdd := 1_000_000_000 - strmAdd - partnerAdd

	require.Equal(t, 2_000_000_000+netAdd, c.Params.NetAmountDeposited)
	require.Equal(t, strmAdd, c.StreamflowFeeTotal-percentOfMust(2_000_000_000, 0.25))
	require.Equal(t, partnerAdd, c.PartnerFeeTotal-percentOfMust(2_000_000_000, 0.5))
}

func TestSyncBalance_NoExcessIsNoop(t *testing.T) {
	c := newTestContract()
	held, err := c.heldBalance()
	require.NoError(t, err)

	netBefore := c.Params.NetAmountDeposited
	res, err := c.SyncBalance(c.Params.StartTime, held)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, netBefore, c.Params.NetAmountDeposited)
}

func TestSyncBalance_TopupDisabledIsNoop(t *testing.T) {
	c := newTestContract()
	c.Params.CanTopup = false
	netBefore := c.Params.NetAmountDeposited

	res, err := c.SyncBalance(c.Params.StartTime, 1<<40)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, netBefore, c.Params.NetAmountDeposited)
}

func TestDeposit_TopupDisabled(t *testing.T) {
	c := newTestContract()
	c.Params.CanTopup = false
	res, err := c.Deposit(c.Params.StartTime, 100)
	require.NoError(t, err)
	require.Equal(t, ResultTopupDisabled, res)
}

func TestDeposit_StreamClosed(t *testing.T) {
	c := newTestContract()
	res, err := c.Deposit(c.EndTime, 100)
	require.NoError(t, err)
	require.Equal(t, ResultStreamClosed, res)
}

func TestDeposit_RecomputesEndTime(t *testing.T) {
	c := newTestContract()
	oldEnd := c.EndTime

	res, err := c.Deposit(c.Params.StartTime+1, 1_000_000_000)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Greater(t, c.EndTime, oldEnd)
}

func TestCheckInvariants(t *testing.T) {
	c := newTestContract()
	require.NoError(t, c.checkInvariants())

	c.AmountWithdrawn = c.Params.NetAmountDeposited + 1
	require.ErrorIs(t, c.checkInvariants(), ErrInvariantViolated)
}

func TestFullyDrained(t *testing.T) {
	c := newTestContract()
	require.False(t, c.fullyDrained())

	c.AmountWithdrawn = c.Params.NetAmountDeposited
	c.StreamflowFeeWithdrawn = c.StreamflowFeeTotal
	c.PartnerFeeWithdrawn = c.PartnerFeeTotal
	require.True(t, c.fullyDrained())
}

func percentOfMust(amount uint64, percent float64) uint64 {
	v, err := percentOf(amount, percent)
	if err != nil {
		panic(err)
	}
	return v
}
