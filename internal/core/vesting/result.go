package vesting

import "errors"

// Result is a transaction result code, in the spirit of the teacher's
// tx.Result: a small, serializable value that is the sole observable
// failure signal an instruction handler produces (spec.md §7).
type Result int

const (
	ResultSuccess Result = 0

	ResultAccountsNotWritable Result = 100
	ResultInvalidMetadata     Result = 101
	ResultInvalidMetadataAccount Result = 102
	ResultMetadataAccountMismatch Result = 103
	ResultInvalidEscrowAccount Result = 104
	ResultInvalidTreasury      Result = 105
	ResultMintMismatch         Result = 106
	ResultNotAssociated        Result = 107
	ResultTransferNotAllowed   Result = 108
	ResultStreamClosed         Result = 109
	ResultStreamNameTooLong    Result = 110
	ResultInvalidTimestamps    Result = 111
	ResultInvalidDeposit       Result = 112
	ResultAmountIsZero         Result = 113
	ResultAmountMoreThanAvailable Result = 114
	ResultArithmeticOverflow   Result = 115
	ResultTopupDisabled        Result = 116
	ResultUninitializedAccount Result = 117
	ResultInvalidInstructionData Result = 118
	ResultInvalidAssociatedAccount Result = 119
	ResultUnauthorized         Result = 120
)

var resultMessages = map[Result]string{
	ResultSuccess:                  "the instruction was applied",
	ResultAccountsNotWritable:      "a declared-writable account is read-only",
	ResultInvalidMetadata:          "contract record is absent",
	ResultInvalidMetadataAccount:   "contract record has the wrong owner",
	ResultMetadataAccountMismatch:  "supplied principals disagree with the contract record",
	ResultInvalidEscrowAccount:     "escrow account is absent, misowned, or not derivable",
	ResultInvalidTreasury:          "protocol treasury principal mismatch",
	ResultMintMismatch:             "a supplied token account is not associated with the contract's mint",
	ResultNotAssociated:            "a supplied token account is not the canonical associated address",
	ResultTransferNotAllowed:       "can_transfer returned false",
	ResultStreamClosed:             "operation attempted after end_time where forbidden",
	ResultStreamNameTooLong:        "stream name exceeds 64 bytes",
	ResultInvalidTimestamps:        "invalid timestamps",
	ResultInvalidDeposit:           "invalid deposit",
	ResultAmountIsZero:             "amount is zero",
	ResultAmountMoreThanAvailable:  "amount exceeds recipient available",
	ResultArithmeticOverflow:       "a checked arithmetic operation overflowed",
	ResultTopupDisabled:            "can_topup is false",
	ResultUninitializedAccount:     "contract slot is empty or already settled",
	ResultInvalidInstructionData:   "unknown instruction tag",
	ResultInvalidAssociatedAccount: "new recipient token account is not the canonical associated address",
	ResultUnauthorized:             "authority lacks permission for this instruction",
}

// Message returns a human-readable description of r.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "unknown result"
}

// Error implements the error interface so a Result can be returned
// and compared with errors.Is directly.
func (r Result) Error() string {
	return r.Message()
}

// IsSuccess reports whether r is ResultSuccess.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess
}

// ErrInvariantViolated is returned by checkInvariants; it should never
// be observable outside of a test or a programming error, since every
// handler is constructed to leave the invariants holding.
var ErrInvariantViolated = errors.New("contract invariant violated")
