package oracle

import (
	"fmt"
	"sync"

	"nftlend/identity"
)

// StaticSource is a fixed-price Source used by tests and local fixtures in
// place of the live external price-feed program (spec.md §1 Non-goals:
// "the oracle providing collection floor prices" is out of scope for THE
// CORE).
type StaticSource struct {
	mu     sync.RWMutex
	prices map[identity.ID]uint64
}

// NewStaticSource constructs a StaticSource with no configured prices.
func NewStaticSource() *StaticSource {
	return &StaticSource{prices: make(map[identity.ID]uint64)}
}

// SetPrice configures the floor price returned for collection.
func (s *StaticSource) SetPrice(collection identity.ID, price uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[collection] = price
}

// PriceOf implements Source.
func (s *StaticSource) PriceOf(collection identity.ID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[collection]
	if !ok {
		return 0, fmt.Errorf("oracle: no price configured for collection %s", collection)
	}
	return price, nil
}

var _ Source = (*StaticSource)(nil)
