// Package record defines the two persisted, fixed/variable-length binary
// layouts THE CORE reads and writes: the per-loan Escrow Record (spec.md
// §3.1) and the per-collection Whitelist Record (spec.md §3.2). Layouts are
// little-endian, matching the teacher's on-chain account encodings.
package record

import (
	"encoding/binary"
	"fmt"

	"nftlend/identity"
)

// EscrowState enumerates the five observable lifecycle states derived from
// an Escrow Record's boolean triple (spec.md §4.4).
type EscrowState uint8

const (
	// StateEmpty is the state of an address with no escrow record yet.
	StateEmpty EscrowState = iota
	StateHeld
	StateOffered
	StateActive
	StateClosed
	// stateUnreachable marks boolean combinations spec.md §4.4 declares
	// unreachable; a record observed in this state indicates storage
	// corruption or a bug upstream of the state machine.
	stateUnreachable
)

func (s EscrowState) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateHeld:
		return "Held"
	case StateOffered:
		return "Offered"
	case StateActive:
		return "Active"
	case StateClosed:
		return "Closed"
	default:
		return "Unreachable"
	}
}

// EscrowRecordSize is the fixed on-chain size of an Escrow Record in bytes:
// three 32-byte identifiers, two uint64 fields, and three boolean flags.
const EscrowRecordSize = 32 + 32 + 32 + 8 + 8 + 1 + 1 + 1

// EscrowRecord is the per-deposited-NFT escrow state (spec.md §3.1).
type EscrowRecord struct {
	NFTMint     identity.ID
	NFTOwner    identity.ID
	Lender      identity.ID
	LoanStart   uint64
	LoanAmount  uint64
	LoanOffered bool
	LoanTaken   bool
	Canceled    bool
}

// NewEscrowRecord zero-initializes every field before setting the deposited
// mint and owner, closing the gap spec.md §9 O-5 flags in the source (which
// relied on implicit zeroing from a fresh allocation rather than
// initializing explicitly).
func NewEscrowRecord(mint, owner identity.ID) *EscrowRecord {
	return &EscrowRecord{
		NFTMint:     mint,
		NFTOwner:    owner,
		Lender:      identity.Zero,
		LoanStart:   0,
		LoanAmount:  0,
		LoanOffered: false,
		LoanTaken:   false,
		Canceled:    false,
	}
}

// State derives the observable lifecycle state from the record's boolean
// triple, per the spec.md §4.4 table. A nil record is Empty: no escrow
// account has been created at the address yet.
func (r *EscrowRecord) State() EscrowState {
	if r == nil {
		return StateEmpty
	}
	switch {
	case r.Canceled:
		return StateClosed
	case !r.LoanOffered && !r.LoanTaken:
		return StateHeld
	case r.LoanOffered && !r.LoanTaken:
		return StateOffered
	case r.LoanOffered && r.LoanTaken:
		return StateActive
	default:
		// (offered=false, taken=true, *) is declared unreachable by
		// spec.md §4.4; surfaced rather than silently coerced so a bug
		// producing it is visible immediately.
		return stateUnreachable
	}
}

// Validate checks the four invariants spec.md §3.1 declares over an Escrow
// Record's fields.
func (r *EscrowRecord) Validate() error {
	if r == nil {
		return nil
	}
	if r.LoanTaken && !r.LoanOffered {
		return fmt.Errorf("record: loan_taken requires loan_offered")
	}
	if r.Canceled && r.LoanTaken {
		return fmt.Errorf("record: canceled requires !loan_taken")
	}
	if r.LoanOffered && !r.LoanTaken {
		if r.Lender.IsZero() || r.LoanAmount == 0 {
			return fmt.Errorf("record: offered-not-taken requires lender != 0 and loan_amt > 0")
		}
	}
	if r.LoanTaken && r.LoanStart == 0 {
		return fmt.Errorf("record: loan_taken requires loan_start > 0")
	}
	return nil
}

// Encode serializes the record to its fixed-size little-endian layout.
func (r *EscrowRecord) Encode() []byte {
	buf := make([]byte, EscrowRecordSize)
	off := 0
	copy(buf[off:], r.NFTMint[:])
	off += identity.Size
	copy(buf[off:], r.NFTOwner[:])
	off += identity.Size
	copy(buf[off:], r.Lender[:])
	off += identity.Size
	binary.LittleEndian.PutUint64(buf[off:], r.LoanStart)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], r.LoanAmount)
	off += 8
	buf[off] = boolByte(r.LoanOffered)
	off++
	buf[off] = boolByte(r.LoanTaken)
	off++
	buf[off] = boolByte(r.Canceled)
	return buf
}

// DecodeEscrowRecord parses an Escrow Record from its binary layout.
// Trailing bytes beyond the fixed size are tolerated, per spec.md §6.5.
func DecodeEscrowRecord(data []byte) (*EscrowRecord, error) {
	if len(data) < EscrowRecordSize {
		return nil, fmt.Errorf("record: escrow buffer too short: got %d, need %d", len(data), EscrowRecordSize)
	}
	off := 0
	mint, err := identity.FromBytes(data[off : off+identity.Size])
	if err != nil {
		return nil, err
	}
	off += identity.Size
	owner, err := identity.FromBytes(data[off : off+identity.Size])
	if err != nil {
		return nil, err
	}
	off += identity.Size
	lender, err := identity.FromBytes(data[off : off+identity.Size])
	if err != nil {
		return nil, err
	}
	off += identity.Size
	loanStart := binary.LittleEndian.Uint64(data[off:])
	off += 8
	loanAmt := binary.LittleEndian.Uint64(data[off:])
	off += 8
	loanOffered := data[off] != 0
	off++
	loanTaken := data[off] != 0
	off++
	canceled := data[off] != 0

	rec := &EscrowRecord{
		NFTMint:     mint,
		NFTOwner:    owner,
		Lender:      lender,
		LoanStart:   loanStart,
		LoanAmount:  loanAmt,
		LoanOffered: loanOffered,
		LoanTaken:   loanTaken,
		Canceled:    canceled,
	}
	return rec, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
