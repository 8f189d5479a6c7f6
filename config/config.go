// Package config centralises the program-wide constants and the handful of
// operator-tunable knobs THE CORE depends on, the way the teacher's
// native/lending/params.go and native/lending/config.go group risk
// parameters instead of scattering literals through engine code.
package config

import (
	"time"

	"nftlend/identity"
)

// Seed tags used by the Address Deriver (spec.md §3.3).
var (
	NFTVaultSeedTag = []byte("nftvault")
	WhitelistSeedTag = []byte("whitelist")
)

// MetadataSeedTag is the literal seed the external metadata program uses to
// derive a mint's metadata account (spec.md §6.4).
var MetadataSeedTag = []byte("metadata")

// AdminID is the hard-coded administrator identity authorised to mutate
// whitelist records (spec.md §6.3).
var AdminID = identity.MustParse("5j2V6qBBt7S6guRhP6Jg4nUeYUhYmySoZAyLS7uTdREt")

// MetadataProgramID is the external collection-metadata program's identity
// (spec.md §6.4).
var MetadataProgramID = identity.MustParse("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// LoanTermDays is the fixed loan duration: Repay is permitted while at most
// this many whole days have elapsed, ClaimDefaulted only once more than this
// many have elapsed.
const LoanTermDays uint64 = 14

// LTVDenominator fixes the loan-to-value ratio: principal = floor price / 2.
const LTVDenominator uint64 = 2

// DaySeconds is the number of seconds the program treats as one interest day.
const DaySeconds uint64 = 86400

// DayDuration is DaySeconds expressed as a time.Duration for callers that
// work in wall-clock time rather than raw integer seconds.
const DayDuration = time.Duration(DaySeconds) * time.Second

// CancelRefundTarget selects who receives the vault's committed principal
// when a borrower cancels a loan that already carries a lender offer.
// spec.md §9 O-1 flags the source's choice (refund to the borrower, not the
// funding lender) as a likely theft vector and leaves the decision to
// operators; THE CORE makes it a configuration switch rather than guessing.
type CancelRefundTarget uint8

const (
	// RefundToBorrower replicates the observed source behavior bit-exact:
	// the principal the lender funded into the vault returns to the
	// borrower on cancel, not to the lender who supplied it.
	RefundToBorrower CancelRefundTarget = iota
	// RefundToLender routes the refund to the lender who funded the vault,
	// closing the theft vector spec.md §9 O-1 identifies.
	RefundToLender
)

// RiskParameters groups the operator-tunable knobs THE CORE exposes beyond
// the fixed constants above.
type RiskParameters struct {
	// CancelRefund decides who is repaid when Cancel unwinds a funded offer.
	// Defaults to RefundToBorrower to match spec.md's documented source
	// behavior; see SPEC_FULL.md's open-question decisions for the rationale.
	CancelRefund CancelRefundTarget
}

// DefaultRiskParameters mirrors the bit-exact source behavior spec.md
// documents as the default, requiring an explicit operator opt-in to change
// the refund destination.
var DefaultRiskParameters = RiskParameters{CancelRefund: RefundToBorrower}
