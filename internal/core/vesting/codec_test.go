package vesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContractEncodeDecodeRoundTrip(t *testing.T) {
	c := newTestContract()
	c.Principals = Principals{
		Sender:             principalFrom(1),
		SenderTokens:       principalFrom(11),
		Recipient:          principalFrom(2),
		RecipientTokens:    principalFrom(12),
		Mint:               principalFrom(3),
		EscrowTokens:       principalFrom(13),
		StreamflowTreasury: principalFrom(4),
		StreamflowTreasuryTokens: principalFrom(14),
		Partner:            principalFrom(5),
		PartnerTokens:      principalFrom(15),
	}
	name, err := NewStreamName("acme vesting")
	require.NoError(t, err)
	c.Params.StreamName = name
	c.AmountWithdrawn = 42
	c.LastWithdrawnAt = 1_234
	c.CanceledAt = 0

	data, err := c.Encode()
	require.NoError(t, err)
	require.Zero(t, len(data)%8, "encoded record must be padded to a multiple of 8 bytes")

	got, err := DecodeContract(data)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestDecodeContract_BadMagic(t *testing.T) {
	c := newTestContract()
	data, err := c.Encode()
	require.NoError(t, err)
	data[1] ^= 0xFF // corrupt a magic byte

	_, err = DecodeContract(data)
	require.Error(t, err)
}

func TestStreamName_PaddingAndTooLong(t *testing.T) {
	name, err := NewStreamName("short")
	require.NoError(t, err)
	require.Equal(t, "short", name.String())

	_, err = NewStreamName(string(make([]byte, StreamNameLen+1)))
	require.ErrorIs(t, err, ErrStreamNameTooLong)
}
