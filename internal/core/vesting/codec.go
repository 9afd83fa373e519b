package vesting

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encode serializes a Contract into the canonical persisted layout of
// spec.md §6.3: fixed field order, little-endian, padded to a
// multiple of 8 bytes. The leading Version byte lets a future schema
// evolve without breaking records written by an older build.
func (c *Contract) Encode() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(byte(c.Version))
	if err := binary.Write(&buf, binary.LittleEndian, c.Magic); err != nil {
		return nil, err
	}
	for _, v := range []int64{c.CreatedAt, c.EndTime, c.LastWithdrawnAt, c.CanceledAt} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	if err := encodeCreateParams(&buf, c.Params); err != nil {
		return nil, err
	}

	for _, v := range []uint64{c.AmountWithdrawn, c.StreamflowFeeTotal, c.StreamflowFeeWithdrawn, c.PartnerFeeTotal, c.PartnerFeeWithdrawn} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	for _, v := range []float64{c.StreamflowFeePercent, c.PartnerFeePercent} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	for _, p := range []Principal{
		c.Principals.Sender, c.Principals.SenderTokens,
		c.Principals.Recipient, c.Principals.RecipientTokens,
		c.Principals.Mint, c.Principals.EscrowTokens,
		c.Principals.StreamflowTreasury, c.Principals.StreamflowTreasuryTokens,
		c.Principals.Partner, c.Principals.PartnerTokens,
	} {
		buf.Write(p[:])
	}

	padTo8(&buf)
	return buf.Bytes(), nil
}

// DecodeContract parses a Contract from its canonical persisted form.
func DecodeContract(data []byte) (*Contract, error) {
	r := bytes.NewReader(data)
	c := &Contract{}

	versionByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	c.Version = Version(versionByte)

	if err := binary.Read(r, binary.LittleEndian, &c.Magic); err != nil {
		return nil, err
	}
	if c.Magic != Magic {
		return nil, fmt.Errorf("decode contract: bad magic %#x", c.Magic)
	}

	for _, v := range []*int64{&c.CreatedAt, &c.EndTime, &c.LastWithdrawnAt, &c.CanceledAt} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	params, err := decodeCreateParams(r)
	if err != nil {
		return nil, err
	}
	c.Params = params

	for _, v := range []*uint64{&c.AmountWithdrawn, &c.StreamflowFeeTotal, &c.StreamflowFeeWithdrawn, &c.PartnerFeeTotal, &c.PartnerFeeWithdrawn} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	for _, v := range []*float64{&c.StreamflowFeePercent, &c.PartnerFeePercent} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	principals := make([]*Principal, 10)
	principals[0], principals[1] = &c.Principals.Sender, &c.Principals.SenderTokens
	principals[2], principals[3] = &c.Principals.Recipient, &c.Principals.RecipientTokens
	principals[4], principals[5] = &c.Principals.Mint, &c.Principals.EscrowTokens
	principals[6], principals[7] = &c.Principals.StreamflowTreasury, &c.Principals.StreamflowTreasuryTokens
	principals[8], principals[9] = &c.Principals.Partner, &c.Principals.PartnerTokens

	for _, p := range principals {
		if _, err := io.ReadFull(r, p[:]); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func encodeCreateParams(buf *bytes.Buffer, p CreateParams) error {
	for _, v := range []int64{p.StartTime, p.Cliff} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, v := range []uint64{p.CliffAmount, uint64(p.Period), p.AmountPerPeriod, p.NetAmountDeposited} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	flags := []bool{p.CancelableBySender, p.CancelableByRecipient, p.TransferableBySender, p.TransferableByRecipient, p.AutomaticWithdrawal, p.CanTopup}
	for _, f := range flags {
		if f {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	buf.Write(p.StreamName[:])
	return nil
}

func decodeCreateParams(r *bytes.Reader) (CreateParams, error) {
	var p CreateParams
	for _, v := range []*int64{&p.StartTime, &p.Cliff} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return p, err
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &p.CliffAmount); err != nil {
		return p, err
	}
	var period uint64
	if err := binary.Read(r, binary.LittleEndian, &period); err != nil {
		return p, err
	}
	p.Period = int64(period)
	if err := binary.Read(r, binary.LittleEndian, &p.AmountPerPeriod); err != nil {
		return p, err
	}
	if err := binary.Read(r, binary.LittleEndian, &p.NetAmountDeposited); err != nil {
		return p, err
	}

	flags := make([]byte, 6)
	if _, err := io.ReadFull(r, flags); err != nil {
		return p, err
	}
	p.CancelableBySender = flags[0] != 0
	p.CancelableByRecipient = flags[1] != 0
	p.TransferableBySender = flags[2] != 0
	p.TransferableByRecipient = flags[3] != 0
	p.AutomaticWithdrawal = flags[4] != 0
	p.CanTopup = flags[5] != 0

	var name [StreamNameLen]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return p, err
	}
	p.StreamName = StreamName(name)

	return p, nil
}

func padTo8(buf *bytes.Buffer) {
	if rem := buf.Len() % 8; rem != 0 {
		buf.Write(make([]byte, 8-rem))
	}
}
