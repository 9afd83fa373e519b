package vesting

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Tag identifies which instruction a wire payload decodes to
// (spec.md §6.1).
type Tag byte

const (
	TagCreate   Tag = 0
	TagWithdraw Tag = 1
	TagCancel   Tag = 2
	TagTransfer Tag = 3
	TagTopUp    Tag = 4
)

// DecodeWithdrawOrTopUp decodes the single u64 amount payload shared
// by Withdraw and TopUp.
func DecodeWithdrawOrTopUp(payload []byte) (uint64, error) {
	if len(payload) != 8 {
		return 0, ResultInvalidInstructionData
	}
	return binary.LittleEndian.Uint64(payload), nil
}

// EncodeAmount encodes a u64 amount payload, little-endian.
func EncodeAmount(amount uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, amount)
	return buf
}

// DecodeCreateParams decodes the fixed-layout CreateParams payload of
// a Create instruction: every field in declared order, little-endian,
// with the 64-byte stream name last (spec.md §6.1).
func DecodeCreateParams(payload []byte) (CreateParams, error) {
	const wantLen = 8*6 + 1*6 + StreamNameLen // six 8-byte integer fields below + 6 bool flags + name
	r := bytes.NewReader(payload)

	var p CreateParams
	fields := []*int64{&p.StartTime, &p.Cliff}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return p, fmt.Errorf("%w: %v", Result(ResultInvalidInstructionData), err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &p.CliffAmount); err != nil {
		return p, ResultInvalidInstructionData
	}
	if err := binary.Read(r, binary.LittleEndian, &p.Period); err != nil {
		return p, ResultInvalidInstructionData
	}
	if err := binary.Read(r, binary.LittleEndian, &p.AmountPerPeriod); err != nil {
		return p, ResultInvalidInstructionData
	}
	if err := binary.Read(r, binary.LittleEndian, &p.NetAmountDeposited); err != nil {
		return p, ResultInvalidInstructionData
	}

	flags := make([]byte, 6)
	if _, err := io.ReadFull(r, flags); err != nil {
		return p, ResultInvalidInstructionData
	}
	p.CancelableBySender = flags[0] != 0
	p.CancelableByRecipient = flags[1] != 0
	p.TransferableBySender = flags[2] != 0
	p.TransferableByRecipient = flags[3] != 0
	p.AutomaticWithdrawal = flags[4] != 0
	p.CanTopup = flags[5] != 0

	var name [StreamNameLen]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return p, ResultInvalidInstructionData
	}
	p.StreamName = StreamName(name)

	_ = wantLen // documents the expected payload size; the reads above reject a shorter payload, trailing bytes are not checked
	return p, nil
}
