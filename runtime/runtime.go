// Package runtime defines the ambient-runtime interfaces THE CORE depends
// on but does not implement: signature verification, account
// preallocation/rent accounting, the NFT transfer primitive, the
// associated-token-account derivation, and collection-metadata decoding
// (spec.md §1 Non-goals). Their semantics are summarized here; a concrete
// implementation (e.g. runtime/memory for tests) supplies the behavior.
//
// This mirrors the teacher's native/lending.engineState pattern
// (native/lending/engine.go): the state machine is wired against a small
// storage/service interface rather than a concrete database, so production
// and test callers can supply different backings.
package runtime

import (
	"time"

	coreerrors "nftlend/core/errors"
	"nftlend/identity"
)

// AccountMeta is the runtime-observable metadata for one account in an
// instruction's ordered account list (spec.md §6.2).
type AccountMeta struct {
	Key      identity.ID
	Signer   bool
	Writable bool
	Owner    identity.ID
	Balance  uint64
	Data     []byte
}

// Ledger is the storage and service surface every handler is wired against.
// It plays the role the teacher's engineState interface plays for the
// lending engine: a narrow seam between state-machine logic and
// persistence/runtime services.
type Ledger interface {
	// Account returns the current metadata for key, or ok=false if no
	// account exists at that address yet.
	Account(key identity.ID) (AccountMeta, bool)
	// PutAccount persists account metadata, creating the account if absent.
	PutAccount(account AccountMeta)

	// Allocate creates account at key, sized size bytes and owned by
	// owner, funded from payer. It fails with coreerrors.KindNotRentExempt
	// if the funding amount does not clear the rent-exemption threshold
	// for size bytes (spec.md §7 NotRentExempt).
	Allocate(payer, key, owner identity.ID, size int) error

	// TransferNative moves amount of the chain's native currency from
	// from to to. The source account must already exist; runtime/memory
	// creates the destination account if it is absent.
	TransferNative(from, to identity.ID, amount uint64) error

	// TokenBalance returns the SPL-style token balance held by a token
	// account (always 0 or 1 for the NFTs this program custodies).
	TokenBalance(tokenAccount identity.ID) uint64

	// TransferToken moves amount units of mint from one token account to
	// another, authorized by authority (either a direct signer or a
	// derived-address authority the caller has already verified).
	TransferToken(mint, from, to, authority identity.ID, amount uint64) error

	// EnsureTokenAccount creates the token account at tokenAccount for
	// (holder, mint) if it does not already have data, matching spec.md
	// §4.4.1's "If vault_nft_token_account has no data, create it" and
	// §4.4.6's analogous check for the lender. Callers have already
	// verified tokenAccount equals the canonical associated-token address
	// for (holder, mint) before invoking this.
	EnsureTokenAccount(tokenAccount, holder, mint identity.ID) error

	// MetadataCreators decodes the external metadata account for mint and
	// returns its ordered creator sequence (spec.md §6.4).
	MetadataCreators(mint identity.ID) ([]identity.ID, error)

	// Now returns the current chain time, used for loan_start and elapsed
	// term calculations.
	Now() time.Time
}

// Oracle is the external price-feed collaborator (spec.md §1 Non-goals,
// §4.5): a single price_of(collection) -> integer contract.
type Oracle interface {
	PriceOf(mint identity.ID) (uint64, error)
}

// ErrAccountNotFound is a sentinel Ledger implementations can return when an
// operation references an account that does not exist. runtime/memory does
// not use it; it reports missing accounts with its own formatted errors.
var ErrAccountNotFound = coreerrors.New(coreerrors.KindStateInvalid, "runtime: account not found")
