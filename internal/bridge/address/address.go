// Package address renders vesting.Principal values as base58-check
// strings for display in the CLI and RPC layer. It does not verify
// signatures or derive keys — principal rendering only.
package address

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/strmfi/vestd/internal/core/vesting"
)

const versionByte = 0x00

var base58Alphabet = []byte("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz")

// Encode renders a Principal as version-byte-prefixed,
// checksummed base58, the same shape a wallet address takes: a
// version byte, the payload, and a 4-byte double-SHA-256 checksum.
func Encode(p vesting.Principal) string {
	h := ripemd160.New()
	h.Write(p[:])
	payload := h.Sum(nil)

	versioned := make([]byte, 0, 1+len(payload))
	versioned = append(versioned, versionByte)
	versioned = append(versioned, payload...)

	checksum := doubleSha256(versioned)[:4]
	full := append(versioned, checksum...)

	return base58Encode(full)
}

// Decode parses a base58-check string produced by Encode back to the
// ripemd160(principal) digest it carries; it cannot recover the
// original 32-byte Principal since Encode is a one-way hash, so Decode
// exists only to validate an address's checksum and version byte.
func Decode(s string) ([]byte, error) {
	raw, err := base58Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < 5 {
		return nil, errors.New("address: too short")
	}
	versioned, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	want := doubleSha256(versioned)[:4]
	for i := range checksum {
		if checksum[i] != want[i] {
			return nil, errors.New("address: bad checksum")
		}
	}
	if versioned[0] != versionByte {
		return nil, errors.New("address: unknown version byte")
	}
	return versioned[1:], nil
}

func doubleSha256(b []byte) []byte {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	return h2[:]
}

func base58Encode(input []byte) string {
	zero := big.NewInt(0)
	radix := big.NewInt(58)
	x := new(big.Int).SetBytes(input)

	var out []byte
	mod := new(big.Int)
	for x.Cmp(zero) > 0 {
		x.DivMod(x, radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for _, b := range input {
		if b != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}
	reverse(out)
	return string(out)
}

func base58Decode(s string) ([]byte, error) {
	radix := big.NewInt(58)
	x := big.NewInt(0)
	for _, c := range []byte(s) {
		idx := indexOf(c)
		if idx < 0 {
			return nil, errors.New("address: invalid base58 character")
		}
		x.Mul(x, radix)
		x.Add(x, big.NewInt(int64(idx)))
	}

	decoded := x.Bytes()
	leadingZeros := 0
	for _, c := range []byte(s) {
		if c != base58Alphabet[0] {
			break
		}
		leadingZeros++
	}

	out := make([]byte, leadingZeros+len(decoded))
	copy(out[leadingZeros:], decoded)
	return out, nil
}

func indexOf(c byte) int {
	for i, a := range base58Alphabet {
		if a == c {
			return i
		}
	}
	return -1
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
