// Package errors defines the program's error taxonomy. spec.md §7 notes the
// source overloads a single MissingSignature kind for every semantic
// precondition failure; THE CORE splits it the way spec.md recommends
// while keeping a single stable numeric Code for wire compatibility with
// clients built against the old, coarser surface.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies why an instruction was rejected.
type Kind uint8

const (
	// KindInvalidInstruction signals a malformed instruction buffer.
	KindInvalidInstruction Kind = iota
	// KindUnauthorized signals a missing or incorrect signer, or an
	// identity that does not match the required authority (e.g. ADMIN_ID).
	KindUnauthorized
	// KindAddressMismatch signals a supplied account address that does not
	// match its required derivation or canonical form.
	KindAddressMismatch
	// KindStateInvalid signals a loan-state-machine precondition violation:
	// wrong record booleans for the attempted transition, whitelist
	// inactive, term boundary violated, and similar.
	KindStateInvalid
	// KindAmountInsufficient signals a caller-supplied amount below the
	// protocol-computed required amount.
	KindAmountInsufficient
	// KindNotRentExempt signals an allocation sized below the runtime's
	// rent-exemption threshold.
	KindNotRentExempt
	// KindOverflow is reserved for arithmetic guards.
	KindOverflow
)

// String renders the kind for log lines and error messages.
func (k Kind) String() string {
	switch k {
	case KindInvalidInstruction:
		return "invalid_instruction"
	case KindUnauthorized:
		return "unauthorized"
	case KindAddressMismatch:
		return "address_mismatch"
	case KindStateInvalid:
		return "state_invalid"
	case KindAmountInsufficient:
		return "amount_insufficient"
	case KindNotRentExempt:
		return "not_rent_exempt"
	case KindOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Code returns the stable numeric wire code for the kind. InvalidInstruction
// is 0, NotRentExempt is 2 and Overflow is 3; the four kinds split out of
// the legacy MissingSignature failure (Unauthorized, AddressMismatch,
// StateInvalid, AmountInsufficient) all collapse to its wire code (1),
// preserving old clients' ability to treat any of these as the single coarse
// failure they originally observed, while internal callers get the finer
// Kind for diagnostics.
func (k Kind) Code() uint32 {
	if k == KindInvalidInstruction {
		return 0
	}
	if k == KindNotRentExempt {
		return 2
	}
	if k == KindOverflow {
		return 3
	}
	return 1
}

// ProgramError is the error type every handler returns on failure. It always
// carries a Kind and, where available, the underlying cause.
type ProgramError struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *ProgramError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ProgramError) Unwrap() error { return e.cause }

// New constructs a ProgramError of the given kind with a message.
func New(kind Kind, msg string) *ProgramError {
	return &ProgramError{Kind: kind, Msg: msg}
}

// Wrap constructs a ProgramError of the given kind, wrapping cause.
func Wrap(kind Kind, msg string, cause error) *ProgramError {
	return &ProgramError{Kind: kind, Msg: msg, cause: cause}
}

// Is allows errors.Is(err, Kind) style matching against sentinel kinds by
// comparing the decoded ProgramError's Kind.
func Is(err error, kind Kind) bool {
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
