// Package instruction implements the Instruction Codec (spec.md §4.1,
// §6.1): decoding the opaque instruction byte buffer submitted alongside an
// ordered account list into a typed, tagged variant. The tag byte follows
// the teacher's TxType convention (core/types/transaction.go) of a single
// leading byte selecting the dispatcher branch.
package instruction

import (
	"encoding/binary"
	"fmt"
)

// Tag identifies which of the nine program instructions a buffer encodes.
type Tag byte

const (
	TagDeposit Tag = iota
	TagOffer
	TagAcceptOffer
	TagCancel
	TagRepay
	TagClaimDefaulted
	TagCreateWhitelist
	TagDeactivateWhitelist
	TagUpdateInterest
)

// String renders the tag's instruction name for logging.
func (t Tag) String() string {
	switch t {
	case TagDeposit:
		return "Deposit"
	case TagOffer:
		return "Offer"
	case TagAcceptOffer:
		return "AcceptOffer"
	case TagCancel:
		return "Cancel"
	case TagRepay:
		return "Repay"
	case TagClaimDefaulted:
		return "ClaimDefaulted"
	case TagCreateWhitelist:
		return "CreateWhitelist"
	case TagDeactivateWhitelist:
		return "DeactivateWhitelist"
	case TagUpdateInterest:
		return "UpdateInterest"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(t))
	}
}

// payloadLen is the number of little-endian payload bytes following the tag
// byte for instructions that carry one; instructions absent from this map
// carry no payload.
var payloadLen = map[Tag]int{
	TagOffer:           8,
	TagRepay:           8,
	TagCreateWhitelist: 8,
	TagUpdateInterest:  8,
}

// Instruction is the decoded, typed form of an instruction buffer.
type Instruction struct {
	Tag Tag
	// Amount carries the Offer/Repay native-unit amount parameter.
	Amount uint64
	// CreatorCount carries CreateWhitelist's `n` parameter.
	CreatorCount uint64
	// Rate carries UpdateInterest's `daily_interest_rate` parameter.
	Rate uint64
}

// ErrInvalidInstruction signals a malformed instruction buffer: an empty
// buffer, an unrecognised tag (>= 9), or a payload-bearing tag with fewer
// than 9 bytes total (spec.md §4.1, §6.1).
var ErrInvalidInstruction = fmt.Errorf("instruction: invalid instruction buffer")

// Decode parses data into a typed Instruction. Excess trailing bytes beyond
// the tag and its payload are ignored, matching spec.md §6.1.
func Decode(data []byte) (Instruction, error) {
	if len(data) < 1 {
		return Instruction{}, ErrInvalidInstruction
	}
	tag := Tag(data[0])
	if tag > TagUpdateInterest {
		return Instruction{}, ErrInvalidInstruction
	}

	need, hasPayload := payloadLen[tag]
	if !hasPayload {
		return Instruction{Tag: tag}, nil
	}
	if len(data) < 1+need {
		return Instruction{}, ErrInvalidInstruction
	}
	value := binary.LittleEndian.Uint64(data[1 : 1+need])

	inst := Instruction{Tag: tag}
	switch tag {
	case TagOffer, TagRepay:
		inst.Amount = value
	case TagCreateWhitelist:
		inst.CreatorCount = value
	case TagUpdateInterest:
		inst.Rate = value
	}
	return inst, nil
}
