// Package bridge contains the concrete adapters the vesting engine's
// external-collaborator interfaces are wired to: address derivation,
// token transfer, the wall clock, rent sizing and the fee oracle.
package bridge

import (
	"fmt"

	crypto "github.com/strmfi/vestd/internal/crypto/common"
	"github.com/strmfi/vestd/internal/core/vesting"
)

// Namespace bytes distinguish derived-address families the way the
// escrow/owner-directory/offer keylets of a ledger state tree do: each
// address space is the hash of a constant prefix plus its inputs, so
// two different purposes never collide even given the same raw bytes.
const (
	spaceEscrowV1   = 0x01
	spaceEscrowV2   = 0x02
	spaceAssociated = 0x10
)

// Deriver implements vesting.EscrowDeriver by hashing a namespace byte
// together with the caller-supplied inputs, mirroring the namespaced
// index-hash scheme a ledger state tree uses to place entries
// deterministically.
type Deriver struct{}

// NewDeriver returns a stateless EscrowDeriver.
func NewDeriver() Deriver { return Deriver{} }

// DeriveEscrow derives the escrow address for contractID under the
// requested derivation scheme (spec.md §4.4.6). VersionLegacy
// reproduces the scheme a record created before the current build was
// rolled out was addressed with; VersionCurrent is used for every new
// Create.
func (Deriver) DeriveEscrow(version vesting.Version, contractID vesting.Principal) (vesting.Principal, error) {
	switch version {
	case vesting.VersionLegacy:
		return indexHash(spaceEscrowV1, contractID[:]), nil
	case vesting.VersionCurrent:
		return indexHash(spaceEscrowV2, contractID[:]), nil
	default:
		return vesting.Principal{}, fmt.Errorf("bridge: unknown escrow derivation version %d", version)
	}
}

// DeriveAssociated derives the canonical token account for (owner,
// mint), the address a TransferRecipient instruction must be handed so
// the engine can verify it without trusting the caller's claim.
func (Deriver) DeriveAssociated(owner, mint vesting.Principal) (vesting.Principal, error) {
	return indexHash(spaceAssociated, owner[:], mint[:]), nil
}

func indexHash(space byte, parts ...[]byte) vesting.Principal {
	total := 1
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, space)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return vesting.Principal(crypto.Sha512Half(buf))
}

var _ vesting.EscrowDeriver = Deriver{}
