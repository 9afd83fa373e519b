package vesting

// Role classifies an authority (the caller invoking an instruction)
// against a contract's four named principals (spec.md §4.3).
type Role int

const (
	RoleNone Role = iota
	RoleSenderRecipient
	RoleRecipient
	RoleSender
	RoleTreasury
	RolePartner
)

// Resolve classifies authority against the contract's principals. It
// is a pure function of (authority, contract) — property P6.
func Resolve(authority Principal, c *Contract) Role {
	sender := c.Principals.Sender
	recipient := c.Principals.Recipient

	switch {
	case authority == sender && authority == recipient:
		return RoleSenderRecipient
	case authority == recipient:
		return RoleRecipient
	case authority == sender:
		return RoleSender
	case authority == c.Principals.StreamflowTreasury:
		return RoleTreasury
	case authority == c.Principals.Partner:
		return RolePartner
	default:
		return RoleNone
	}
}

// CanCancel implements the cancel column of spec.md §4.3's permission
// table. When now >= endTime, any authority may cancel an expired
// contract (garbage collection).
func CanCancel(role Role, c *Contract, now int64) bool {
	if now >= c.EndTime {
		return true
	}
	switch role {
	case RoleSenderRecipient:
		return c.Params.CancelableBySender || c.Params.CancelableByRecipient
	case RoleSender:
		return c.Params.CancelableBySender
	case RoleRecipient:
		return c.Params.CancelableByRecipient
	default:
		return false
	}
}

// CanTransfer implements the transfer column of spec.md §4.3's
// permission table.
func CanTransfer(role Role, c *Contract) bool {
	switch role {
	case RoleSenderRecipient:
		return c.Params.TransferableBySender || c.Params.TransferableByRecipient
	case RoleSender:
		return c.Params.TransferableBySender
	case RoleRecipient:
		return c.Params.TransferableByRecipient
	default:
		return false
	}
}

// CanWithdraw implements the withdraw column of spec.md §4.3's
// permission table.
func CanWithdraw(role Role, c *Contract, amount uint64) bool {
	switch role {
	case RoleSenderRecipient, RoleRecipient:
		return true
	case RoleSender:
		return c.Params.AutomaticWithdrawal
	case RoleTreasury, RolePartner:
		return amount == 0
	default:
		return c.Params.AutomaticWithdrawal
	}
}
