// Package identity defines the 32-byte account-identifier type shared by
// every account reference the program observes: NFT mints, borrowers,
// lenders, vaults, escrow accounts and whitelist records.
package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the fixed byte length of every identifier in the program.
const Size = 32

// ID is an opaque 32-byte account identifier. It carries no key material;
// it is compared and hashed bytewise, matching the program's "addresses are
// just identifiers" account model.
type ID [Size]byte

// Zero is the identifier with every byte unset, used as the escrow record's
// unpopulated lender/mint sentinel.
var Zero ID

// IsZero reports whether id is the all-zero sentinel.
func (id ID) IsZero() bool {
	return id == Zero
}

// Equal reports whether id and other refer to the same identifier.
func (id ID) Equal(other ID) bool {
	return id == other
}

// Bytes returns a defensive copy of the identifier's bytes.
func (id ID) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, id[:])
	return out
}

// String renders the identifier using the base58 wire format spec.md §6.3
// uses for ADMIN_ID and mint identifiers.
func (id ID) String() string {
	return base58.Encode(id[:])
}

// FromBytes copies b into an ID, failing if the length does not match.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("identity: expected %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Parse decodes a base58-encoded identifier string.
func Parse(s string) (ID, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return ID{}, fmt.Errorf("identity: invalid base58 identifier %q: %w", s, err)
	}
	return FromBytes(decoded)
}

// MustParse is Parse but panics on error; it exists for constructing package
// level constants such as config.AdminID from literal strings.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// HexString renders the identifier as lowercase hex, useful for log lines
// where base58's variable width is inconvenient to scan.
func (id ID) HexString() string {
	return hex.EncodeToString(id[:])
}
