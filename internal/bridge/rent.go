package bridge

import "github.com/strmfi/vestd/internal/core/vesting"

// rentBaseReserve and rentLamportsPerByte approximate a minimum-balance
// reserve scaled by record size, the same shape a rent-exempt-minimum
// calculation takes: a base reserve plus a per-byte charge.
const (
	rentBaseReserve    = 890_880
	rentLamportsPerByte = 6_960
)

// StaticRentSizer computes a deterministic minimum reserve from a
// record's byte size. It never calls out to anything external, so its
// result is reproducible in tests.
type StaticRentSizer struct{}

// MinReserve implements vesting.RentSizer.
func (StaticRentSizer) MinReserve(structSize int) uint64 {
	if structSize <= 0 {
		return rentBaseReserve
	}
	return rentBaseReserve + uint64(structSize)*rentLamportsPerByte
}

var _ vesting.RentSizer = StaticRentSizer{}
