// Package vesting implements the core of a token-vesting / timelock
// escrow protocol: the contract data model, the release-schedule
// algorithm, the top-up/sync accounting, the authority resolver, and
// the instruction handlers that mutate a Contract.
//
// The package knows nothing about the host chain's account model,
// signature verification, or wire transport; those are supplied by the
// caller through the interfaces in bridge.go.
package vesting

import (
	"bytes"
	"errors"
)

// StreamNameLen is the fixed width, in bytes, of a CreateParams label.
const StreamNameLen = 64

// StreamName is a fixed 64-byte, NUL-padded label for a contract.
type StreamName [StreamNameLen]byte

// NewStreamName NUL-pads s to StreamNameLen bytes. It does not
// truncate: ErrStreamNameTooLong is returned if s is longer.
func NewStreamName(s string) (StreamName, error) {
	var out StreamName
	if len(s) > StreamNameLen {
		return out, ErrStreamNameTooLong
	}
	copy(out[:], s)
	return out, nil
}

// String trims the trailing NUL padding.
func (n StreamName) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

// CreateParams is the immutable schedule specification supplied to
// Create. Everything here is fixed for the life of the contract except
// NetAmountDeposited, which Deposit and TopUp grow (see
// Contract.Deposit).
type CreateParams struct {
	StartTime  int64 // wall-clock second release begins
	Cliff      int64 // 0 = no cliff; otherwise >= StartTime
	CliffAmount uint64

	Period          int64  // release granularity in seconds, >= 1
	AmountPerPeriod uint64 // tokens released at each period tick

	NetAmountDeposited uint64 // total the recipient is entitled to, excluding fees

	CancelableBySender    bool
	CancelableByRecipient bool
	TransferableBySender  bool
	TransferableByRecipient bool
	AutomaticWithdrawal   bool
	CanTopup              bool

	StreamName StreamName
}

var (
	ErrStreamNameTooLong   = errors.New("stream name exceeds 64 bytes")
	ErrInvalidTimestamps   = errors.New("invalid timestamps")
	ErrInvalidDeposit      = errors.New("invalid deposit")
	ErrAmountIsZero        = errors.New("amount is zero")
)

// cliffEffective returns the timestamp at which the cliff (if any)
// unlocks, per spec: cliff if cliff > 0 else start_time.
func (p CreateParams) cliffEffective() int64 {
	if p.Cliff > 0 {
		return p.Cliff
	}
	return p.StartTime
}

// CalculateEndTime implements spec.md §3.1's derived end_time:
//
//	end_time = cliff_effective + ceil((net - cliff_amount) / amount_per_period) * period
//
// with end_time = cliff_effective when net < cliff_amount.
func (p CreateParams) CalculateEndTime() int64 {
	cliffEff := p.cliffEffective()

	if p.NetAmountDeposited < p.CliffAmount {
		return cliffEff
	}

	remaining := p.NetAmountDeposited - p.CliffAmount
	if remaining == 0 {
		return cliffEff
	}

	periods := remaining / p.AmountPerPeriod
	if remaining%p.AmountPerPeriod != 0 {
		periods++
	}

	return cliffEff + int64(periods)*p.Period
}

// ValidateForCreate checks the preconditions spec.md §4.4.1 requires
// before a contract may be created from these params at wall-clock now.
func (p CreateParams) ValidateForCreate(now int64) error {
	if p.Period < 1 {
		return ErrInvalidTimestamps
	}
	if p.Cliff != 0 && p.Cliff < p.StartTime {
		return ErrInvalidTimestamps
	}
	if now >= p.StartTime {
		return ErrInvalidTimestamps
	}
	if p.AmountPerPeriod == 0 {
		return ErrAmountIsZero
	}
	if p.NetAmountDeposited < p.AmountPerPeriod {
		return ErrInvalidDeposit
	}
	if p.CliffAmount > 0 && p.NetAmountDeposited < p.CliffAmount {
		return ErrInvalidDeposit
	}
	return nil
}
