package vesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func principalFrom(b byte) Principal {
	var p Principal
	p[0] = b
	return p
}

func contractWithPrincipals() *Contract {
	c := newTestContract()
	c.Principals = Principals{
		Sender:             principalFrom(1),
		Recipient:          principalFrom(2),
		StreamflowTreasury: principalFrom(3),
		Partner:            principalFrom(4),
	}
	return c
}

func TestResolve(t *testing.T) {
	c := contractWithPrincipals()

	require.Equal(t, RoleSender, Resolve(principalFrom(1), c))
	require.Equal(t, RoleRecipient, Resolve(principalFrom(2), c))
	require.Equal(t, RoleTreasury, Resolve(principalFrom(3), c))
	require.Equal(t, RolePartner, Resolve(principalFrom(4), c))
	require.Equal(t, RoleNone, Resolve(principalFrom(9), c))
}

func TestResolve_SenderIsRecipient(t *testing.T) {
	c := contractWithPrincipals()
	c.Principals.Recipient = c.Principals.Sender
	require.Equal(t, RoleSenderRecipient, Resolve(c.Principals.Sender, c))
}

// property P6: Resolve is a pure function of (authority, contract).
func TestResolve_Pure(t *testing.T) {
	c := contractWithPrincipals()
	authority := principalFrom(2)
	first := Resolve(authority, c)
	second := Resolve(authority, c)
	require.Equal(t, first, second)
}

func TestCanCancel(t *testing.T) {
	c := contractWithPrincipals()
	c.Params.CancelableBySender = true
	c.Params.CancelableByRecipient = false
	now := c.Params.StartTime + 1

	require.True(t, CanCancel(RoleSender, c, now))
	require.False(t, CanCancel(RoleRecipient, c, now))
	require.False(t, CanCancel(RoleNone, c, now))

	c.Principals.Recipient = c.Principals.Sender
	require.True(t, CanCancel(RoleSenderRecipient, c, now))
}

func TestCanCancel_ExpiredIsAlwaysCancelable(t *testing.T) {
	c := contractWithPrincipals()
	c.Params.CancelableBySender = false
	c.Params.CancelableByRecipient = false

	require.True(t, CanCancel(RoleNone, c, c.EndTime))
	require.True(t, CanCancel(RoleTreasury, c, c.EndTime+1))
}

func TestCanTransfer(t *testing.T) {
	c := contractWithPrincipals()
	c.Params.TransferableBySender = true
	c.Params.TransferableByRecipient = false

	require.True(t, CanTransfer(RoleSender, c))
	require.False(t, CanTransfer(RoleRecipient, c))
	require.False(t, CanTransfer(RoleTreasury, c))
}

func TestCanWithdraw(t *testing.T) {
	c := contractWithPrincipals()

	require.True(t, CanWithdraw(RoleRecipient, c, 100))
	require.True(t, CanWithdraw(RoleSenderRecipient, c, 100))

	require.False(t, CanWithdraw(RoleSender, c, 100))
	c.Params.AutomaticWithdrawal = true
	require.True(t, CanWithdraw(RoleSender, c, 100))

	require.True(t, CanWithdraw(RoleTreasury, c, 0))
	require.False(t, CanWithdraw(RoleTreasury, c, 1))
	require.True(t, CanWithdraw(RolePartner, c, 0))
	require.False(t, CanWithdraw(RolePartner, c, 1))
}
