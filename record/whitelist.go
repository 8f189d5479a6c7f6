package record

import (
	"encoding/binary"
	"fmt"

	"nftlend/identity"
)

// whitelistHeaderSize is the length of the uint64 producer-count header that
// opens a Whitelist Record; the header is followed by that many 32-byte
// creator identifiers, a state byte, and the uint64 daily interest rate.
const whitelistHeaderSize = 8

// WhitelistRecordSize returns the on-chain size a whitelist record holding
// producerCount creators occupies, so the allocation handler (spec.md
// §4.3 CreateWhitelist) can size the account up front rather than rely on
// runtime resizing, per spec.md §9's "State encoding" design note.
func WhitelistRecordSize(producerCount int) int {
	return whitelistHeaderSize + producerCount*identity.Size + 1 + 8
}

// WhitelistRecord is the per-collection acceptance record (spec.md §3.2).
type WhitelistRecord struct {
	// Producer is the ordered creator-identity sequence that must match a
	// deposited NFT's on-chain metadata creators position-by-position.
	Producer []identity.ID
	// State is true while the collection is accepting new deposits.
	State bool
	// DailyInterestRate is a whole-number multiplier per day: a rate of 1
	// means 100% simple daily interest on the outstanding principal
	// (spec.md §7, §9 O-2).
	DailyInterestRate uint64
}

// NewWhitelistRecord constructs a freshly created whitelist, active by
// default, with daily_interest_rate zero (spec.md §4.3 CreateWhitelist).
func NewWhitelistRecord(producer []identity.ID) (*WhitelistRecord, error) {
	if len(producer) == 0 {
		return nil, fmt.Errorf("record: whitelist producer sequence must be non-empty")
	}
	clone := make([]identity.ID, len(producer))
	copy(clone, producer)
	return &WhitelistRecord{Producer: clone, State: true, DailyInterestRate: 0}, nil
}

// Validate checks the invariants spec.md §3.2 declares: a non-empty
// producer sequence.
func (w *WhitelistRecord) Validate() error {
	if w == nil {
		return fmt.Errorf("record: nil whitelist record")
	}
	if len(w.Producer) == 0 {
		return fmt.Errorf("record: whitelist producer sequence must be non-empty")
	}
	return nil
}

// MatchesCreators reports whether creators equals w.Producer
// position-by-position, the check spec.md §4.4.1 Deposit performs against
// the NFT's decoded collection-metadata creator sequence.
func (w *WhitelistRecord) MatchesCreators(creators []identity.ID) bool {
	if w == nil || len(creators) != len(w.Producer) {
		return false
	}
	for i := range creators {
		if !creators[i].Equal(w.Producer[i]) {
			return false
		}
	}
	return true
}

// Encode serializes the record: a uint64 producer count, that many 32-byte
// identities, a state byte, then the uint64 daily interest rate.
func (w *WhitelistRecord) Encode() []byte {
	buf := make([]byte, WhitelistRecordSize(len(w.Producer)))
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], uint64(len(w.Producer)))
	off += whitelistHeaderSize
	for _, creator := range w.Producer {
		copy(buf[off:], creator[:])
		off += identity.Size
	}
	buf[off] = boolByte(w.State)
	off++
	binary.LittleEndian.PutUint64(buf[off:], w.DailyInterestRate)
	return buf
}

// DecodeWhitelistRecord parses a Whitelist Record from its binary layout.
// Trailing bytes beyond the declared producer length are tolerated, per
// spec.md §6.5.
func DecodeWhitelistRecord(data []byte) (*WhitelistRecord, error) {
	if len(data) < whitelistHeaderSize {
		return nil, fmt.Errorf("record: whitelist buffer too short for header")
	}
	count := binary.LittleEndian.Uint64(data[:whitelistHeaderSize])
	need := WhitelistRecordSize(int(count))
	if len(data) < need {
		return nil, fmt.Errorf("record: whitelist buffer too short: got %d, need %d", len(data), need)
	}
	off := whitelistHeaderSize
	producer := make([]identity.ID, count)
	for i := range producer {
		id, err := identity.FromBytes(data[off : off+identity.Size])
		if err != nil {
			return nil, err
		}
		producer[i] = id
		off += identity.Size
	}
	state := data[off] != 0
	off++
	rate := binary.LittleEndian.Uint64(data[off:])
	return &WhitelistRecord{Producer: producer, State: state, DailyInterestRate: rate}, nil
}
