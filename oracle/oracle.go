// Package oracle implements the Oracle Bridge (spec.md §4.5): reading a
// collateral collection's floor price from an external price-feed program.
// The shape mirrors the teacher's core/pricing.PriceFeed /
// native/swap.PriceOracle collaborator interfaces — a single narrow
// "resolve a price" contract the engine depends on, with the concrete
// feed implementation left to the operator.
package oracle

import (
	"fmt"

	"nftlend/identity"
	"nftlend/record"
)

// Bridge exposes the single price_of(collection) -> integer contract
// spec.md §1 and §4.5 describe, resolving the price from an escrow
// record's stored nft_mint.
type Bridge interface {
	// PriceOf returns the native-unit floor price for the collection
	// represented by escrow's stored nft_mint. Failure of the underlying
	// oracle propagates as a fatal instruction error (spec.md §4.5).
	PriceOf(escrow *record.EscrowRecord) (uint64, error)
}

// Source is the minimal external collaborator a Bridge wraps: a feed keyed
// directly by collection/mint identity, matching spec.md §1's "a
// price_of(collection) → integer contract" framing of the oracle as an
// external, out-of-scope program.
type Source interface {
	PriceOf(collection identity.ID) (uint64, error)
}

// bridge adapts a Source into the Bridge interface the loan engine consumes.
type bridge struct {
	source Source
}

// New wraps source as a Bridge.
func New(source Source) Bridge {
	return &bridge{source: source}
}

func (b *bridge) PriceOf(escrow *record.EscrowRecord) (uint64, error) {
	if escrow == nil {
		return 0, fmt.Errorf("oracle: nil escrow record")
	}
	if b == nil || b.source == nil {
		return 0, fmt.Errorf("oracle: no price source configured")
	}
	price, err := b.source.PriceOf(escrow.NFTMint)
	if err != nil {
		return 0, fmt.Errorf("oracle: price_of(%s): %w", escrow.NFTMint, err)
	}
	return price, nil
}
