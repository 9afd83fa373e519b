package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strmfi/vestd/internal/core/vesting"
	"github.com/strmfi/vestd/internal/storage/ledgerindex"
)

func TestLedger_RecordAndQuery(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	escrow := vesting.Principal{1}
	other := vesting.Principal{2}

	require.NoError(t, l.Record(context.Background(), ledgerindex.Entry{
		Escrow: escrow, Authority: vesting.Principal{9}, Instruction: vesting.TagWithdraw,
		Amount: 100, Result: vesting.ResultSuccess, AppliedAt: 1000,
	}))
	require.NoError(t, l.Record(context.Background(), ledgerindex.Entry{
		Escrow: escrow, Authority: vesting.Principal{9}, Instruction: vesting.TagTopUp,
		Amount: 50, Result: vesting.ResultSuccess, AppliedAt: 1001,
	}))
	require.NoError(t, l.Record(context.Background(), ledgerindex.Entry{
		Escrow: other, Authority: vesting.Principal{9}, Instruction: vesting.TagCancel,
		Amount: 0, Result: vesting.ResultUnauthorized, AppliedAt: 1002,
	}))

	entries, err := l.EntriesForEscrow(context.Background(), escrow, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, vesting.TagTopUp, entries[0].Instruction, "most recent first")
	require.Equal(t, uint64(50), entries[0].Amount)
	require.Equal(t, vesting.TagWithdraw, entries[1].Instruction)
	require.Equal(t, uint64(100), entries[1].Amount)
}

func TestLedger_EntriesForEscrow_Empty(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	entries, err := l.EntriesForEscrow(context.Background(), vesting.Principal{7}, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLedger_Ready(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, l.Ready(context.Background()))
}
