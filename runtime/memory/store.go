// Package memory provides an in-memory runtime.Ledger implementation used
// by the loan and whitelist engine test suites, the same role the teacher's
// in-memory StateProcessor fixtures play for native/lending's engine tests.
package memory

import (
	"fmt"
	"time"

	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/runtime"
)

// rentLamportsPerByte is the (arbitrary but fixed) rent-exemption rate used
// to size allocations in tests: an account is rent exempt once its funded
// balance covers this rate times its declared data length.
const rentLamportsPerByte = 10

// tokenAccount models an SPL-style token-holding account: it is bound to a
// single mint once created and carries a balance of 0 or 1 for the NFTs
// this program custodies.
type tokenAccount struct {
	mint    identity.ID
	owner   identity.ID
	balance uint64
	exists  bool
}

// metadataEntry models the external collection-metadata account content
// THE CORE reads but never writes.
type metadataEntry struct {
	creators []identity.ID
}

// Store is a deterministic, clock-controllable in-memory Ledger.
type Store struct {
	accounts      map[identity.ID]runtime.AccountMeta
	tokenAccounts map[identity.ID]*tokenAccount
	metadata      map[identity.ID]metadataEntry
	now           time.Time
}

// New constructs an empty Store with the clock set to now.
func New(now time.Time) *Store {
	return &Store{
		accounts:      make(map[identity.ID]runtime.AccountMeta),
		tokenAccounts: make(map[identity.ID]*tokenAccount),
		metadata:      make(map[identity.ID]metadataEntry),
		now:           now,
	}
}

// Advance moves the store's clock forward by d, for simulating elapsed loan
// terms in tests.
func (s *Store) Advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// Fund credits key's native balance, creating the account owned by itself
// if absent. It is a test-fixture helper, not part of runtime.Ledger.
func (s *Store) Fund(key identity.ID, amount uint64) {
	acct, ok := s.accounts[key]
	if !ok {
		acct = runtime.AccountMeta{Key: key, Owner: key}
	}
	acct.Balance += amount
	s.accounts[key] = acct
}

// SetMetadata registers the creator sequence a mint's metadata account will
// report, for tests to control Deposit's whitelist-matching behavior.
func (s *Store) SetMetadata(mint identity.ID, creators []identity.ID) {
	s.metadata[mint] = metadataEntry{creators: append([]identity.ID(nil), creators...)}
}

// SeedTokenAccount creates a token account for (owner, mint) pre-populated
// with balance units, for tests to simulate a borrower already holding the
// NFT before Deposit.
func (s *Store) SeedTokenAccount(tokenAccountKey, owner, mint identity.ID, balance uint64) {
	s.tokenAccounts[tokenAccountKey] = &tokenAccount{mint: mint, owner: owner, balance: balance, exists: true}
}

func (s *Store) Account(key identity.ID) (runtime.AccountMeta, bool) {
	acct, ok := s.accounts[key]
	return acct, ok
}

func (s *Store) PutAccount(account runtime.AccountMeta) {
	s.accounts[account.Key] = account
}

func (s *Store) Allocate(payer, key, owner identity.ID, size int) error {
	required := uint64(size) * rentLamportsPerByte
	payerAcct, ok := s.accounts[payer]
	if !ok {
		return fmt.Errorf("memory: payer %s not found", payer)
	}
	if payerAcct.Balance < required {
		return coreerrors.New(coreerrors.KindNotRentExempt, fmt.Sprintf("memory: payer balance %d below rent-exempt minimum %d for %d bytes", payerAcct.Balance, required, size))
	}
	payerAcct.Balance -= required
	s.accounts[payer] = payerAcct

	s.accounts[key] = runtime.AccountMeta{
		Key:      key,
		Owner:    owner,
		Balance:  required,
		Data:     make([]byte, 0, size),
		Writable: true,
	}
	return nil
}

func (s *Store) TransferNative(from, to identity.ID, amount uint64) error {
	fromAcct, ok := s.accounts[from]
	if !ok {
		return fmt.Errorf("memory: account %s not found", from)
	}
	if fromAcct.Balance < amount {
		return fmt.Errorf("memory: account %s has insufficient balance: has %d, needs %d", from, fromAcct.Balance, amount)
	}
	toAcct, ok := s.accounts[to]
	if !ok {
		toAcct = runtime.AccountMeta{Key: to, Owner: to}
	}
	fromAcct.Balance -= amount
	toAcct.Balance += amount
	s.accounts[from] = fromAcct
	s.accounts[to] = toAcct
	return nil
}

func (s *Store) TokenBalance(tokenAccountKey identity.ID) uint64 {
	ta, ok := s.tokenAccounts[tokenAccountKey]
	if !ok || !ta.exists {
		return 0
	}
	return ta.balance
}

func (s *Store) TransferToken(mint, from, to, authority identity.ID, amount uint64) error {
	fromTA, ok := s.tokenAccounts[from]
	if !ok || !fromTA.exists {
		return fmt.Errorf("memory: source token account %s not found", from)
	}
	if !fromTA.mint.Equal(mint) {
		return fmt.Errorf("memory: source token account holds the wrong mint")
	}
	if fromTA.balance < amount {
		return fmt.Errorf("memory: source token account balance %d below requested %d", fromTA.balance, amount)
	}
	toTA, ok := s.tokenAccounts[to]
	if !ok || !toTA.exists {
		return fmt.Errorf("memory: destination token account %s not found", to)
	}
	if !toTA.mint.Equal(mint) {
		return fmt.Errorf("memory: destination token account holds the wrong mint")
	}
	fromTA.balance -= amount
	toTA.balance += amount
	return nil
}

func (s *Store) EnsureTokenAccount(tokenAccountKey, holder, mint identity.ID) error {
	if ta, ok := s.tokenAccounts[tokenAccountKey]; ok && ta.exists {
		return nil
	}
	s.tokenAccounts[tokenAccountKey] = &tokenAccount{mint: mint, owner: holder, balance: 0, exists: true}
	return nil
}

func (s *Store) MetadataCreators(mint identity.ID) ([]identity.ID, error) {
	entry, ok := s.metadata[mint]
	if !ok {
		return nil, fmt.Errorf("memory: no metadata registered for mint %s", mint)
	}
	return append([]identity.ID(nil), entry.creators...), nil
}

func (s *Store) Now() time.Time { return s.now }

var _ runtime.Ledger = (*Store)(nil)
