package vesting

import "context"

// CreateRequest bundles the inputs the Create instruction (spec.md
// §4.4.1) needs beyond the schedule itself.
type CreateRequest struct {
	Params     CreateParams
	Principals Principals
	Sender     Principal // must equal Principals.Sender
}

// Create allocates a new contract and escrow, validates the schedule
// against now, computes the fee split (consulting the fee oracle for
// the partner's negotiated rates), and transfers GrossAmount from the
// sender's token account into escrow.
//
// Preconditions: spec.md §4.4.1 — empty contract slot, sane
// timestamps, net_amount_deposited large enough for at least one
// period and the cliff, sender funded for the full gross amount.
func (e *Engine) Create(ctx context.Context, actx ApplyContext, req CreateRequest) (Result, error) {
	escrow, err := e.Escrow.DeriveEscrow(VersionCurrent, actx.Escrow)
	if err != nil {
		return ResultInvalidEscrowAccount, err
	}

	lock := e.lockFor(escrow)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := e.Store.Load(ctx, escrow); err == nil && existing != nil {
		return ResultInvalidMetadata, errAlreadyExists
	}

	if req.Sender != req.Principals.Sender {
		return ResultMetadataAccountMismatch, nil
	}

	if err := req.Params.ValidateForCreate(actx.Now); err != nil {
		return validationResult(err), err
	}

	partnerPercent, strmPercent := 0.0, StreamflowDefaultFeePercent
	if e.Oracle != nil && !req.Principals.Partner.IsZero() {
		if p, s, err := e.Oracle.PartnerFees(ctx, req.Principals.Partner); err == nil {
			partnerPercent, strmPercent = p, s
		}
	}
	partnerPercent = ClampFeePercent(partnerPercent)
	strmPercent = ClampFeePercent(strmPercent)

	c := &Contract{
		Version:   VersionCurrent,
		Magic:     Magic,
		CreatedAt: actx.Now,

		Params: req.Params,

		StreamflowFeePercent: strmPercent,
		PartnerFeePercent:    partnerPercent,

		Principals: req.Principals,
	}
	c.Principals.EscrowTokens = escrow
	c.EndTime = c.Params.CalculateEndTime()

	strmFeeTotal, err := percentOf(req.Params.NetAmountDeposited, strmPercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	partnerFeeTotal, err := percentOf(req.Params.NetAmountDeposited, partnerPercent)
	if err != nil {
		return ResultArithmeticOverflow, err
	}
	c.StreamflowFeeTotal = strmFeeTotal
	c.PartnerFeeTotal = partnerFeeTotal

	gross, err := c.GrossAmount()
	if err != nil {
		return ResultArithmeticOverflow, err
	}

	balance, err := e.Transfer.BalanceOf(ctx, req.Principals.Mint, req.Principals.SenderTokens)
	if err != nil {
		return ResultInvalidMetadataAccount, err
	}
	if balance < gross {
		return ResultInvalidDeposit, ErrInsufficientFunds
	}

	if err := e.Transfer.Transfer(ctx, req.Principals.Mint, req.Principals.SenderTokens, escrow, gross); err != nil {
		return ResultAccountsNotWritable, err
	}

	if err := e.Store.Save(ctx, escrow, c); err != nil {
		return ResultInvalidMetadata, err
	}

	return ResultSuccess, nil
}

func validationResult(err error) Result {
	switch err {
	case ErrStreamNameTooLong:
		return ResultStreamNameTooLong
	case ErrInvalidTimestamps:
		return ResultInvalidTimestamps
	case ErrInvalidDeposit:
		return ResultInvalidDeposit
	case ErrAmountIsZero:
		return ResultAmountIsZero
	default:
		return ResultInvalidMetadata
	}
}

var errAlreadyExists = simpleErr("contract slot is not empty")
var ErrInsufficientFunds = simpleErr("sender is not funded for the gross amount")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
