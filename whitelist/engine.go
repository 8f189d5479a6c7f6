// Package whitelist implements the Whitelist Engine (spec.md §4.3):
// admin-gated CRUD over per-collection collateral whitelists. The engine
// shape follows the teacher's native/lending.Engine convention of a small
// struct wired against a storage seam (runtime.Ledger here) exposing one
// method per operation.
package whitelist

import (
	"nftlend/addr"
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// Engine performs the three admin-gated whitelist operations spec.md §4.3
// defines: CreateWhitelist, DeactivateWhitelist, UpdateInterest.
type Engine struct {
	programID identity.ID
	ledger    runtime.Ledger
}

// New constructs a whitelist Engine addressed under programID and backed
// by ledger.
func New(programID identity.ID, ledger runtime.Ledger) *Engine {
	return &Engine{programID: programID, ledger: ledger}
}

// requireAdmin enforces spec.md §4.3's "all [whitelist operations] require
// the caller to be a signer whose identity equals ADMIN_ID" rule.
func requireAdmin(admin runtime.AccountMeta) error {
	if !admin.Signer {
		return coreerrors.New(coreerrors.KindUnauthorized, "whitelist: admin account must sign")
	}
	if !admin.Key.Equal(config.AdminID) {
		return coreerrors.New(coreerrors.KindUnauthorized, "whitelist: signer is not the program admin")
	}
	return nil
}

// CreateWhitelist allocates and initializes a new Whitelist Record for the
// collection identified by creators[0] (spec.md §4.3 CreateWhitelist).
// whitelistKey is the account the caller supplied for the new record; it
// must already equal the derived whitelist address.
func (e *Engine) CreateWhitelist(admin runtime.AccountMeta, payer identity.ID, whitelistKey identity.ID, creators []identity.ID) (*record.WhitelistRecord, *record.Event, error) {
	if e == nil || e.ledger == nil {
		return nil, nil, coreerrors.New(coreerrors.KindStateInvalid, "whitelist: engine not configured")
	}
	if err := requireAdmin(admin); err != nil {
		return nil, nil, err
	}
	if len(creators) == 0 {
		return nil, nil, coreerrors.New(coreerrors.KindStateInvalid, "whitelist: creator count must be >= 1")
	}

	derived, err := addr.WhitelistAddress(e.programID, creators[0])
	if err != nil {
		return nil, nil, coreerrors.Wrap(coreerrors.KindAddressMismatch, "whitelist: derivation failed", err)
	}
	if !derived.Address.Equal(whitelistKey) {
		return nil, nil, coreerrors.New(coreerrors.KindAddressMismatch, "whitelist: supplied whitelist account does not match derived address")
	}

	rec, err := record.NewWhitelistRecord(creators)
	if err != nil {
		return nil, nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "whitelist: invalid producer sequence", err)
	}

	size := record.WhitelistRecordSize(len(creators))
	if err := e.ledger.Allocate(payer, whitelistKey, e.programID, size); err != nil {
		return nil, nil, err
	}

	e.persist(whitelistKey, rec)
	return rec, record.NewWhitelistCreatedEvent(rec), nil
}

// DeactivateWhitelist sets state=false on the addressed record (spec.md
// §4.3 DeactivateWhitelist). Existing loans continue; new deposits from
// this collection are rejected.
func (e *Engine) DeactivateWhitelist(admin runtime.AccountMeta, whitelistAccount runtime.AccountMeta) (*record.WhitelistRecord, *record.Event, error) {
	if e == nil || e.ledger == nil {
		return nil, nil, coreerrors.New(coreerrors.KindStateInvalid, "whitelist: engine not configured")
	}
	if err := requireAdmin(admin); err != nil {
		return nil, nil, err
	}
	rec, err := e.loadOwned(whitelistAccount)
	if err != nil {
		return nil, nil, err
	}
	rec.State = false
	e.persist(whitelistAccount.Key, rec)
	return rec, record.NewWhitelistDeactivatedEvent(rec), nil
}

// UpdateInterest sets daily_interest_rate=r on the addressed record,
// requiring state=true (spec.md §4.3 UpdateInterest).
func (e *Engine) UpdateInterest(admin runtime.AccountMeta, whitelistAccount runtime.AccountMeta, rate uint64) (*record.WhitelistRecord, *record.Event, error) {
	if e == nil || e.ledger == nil {
		return nil, nil, coreerrors.New(coreerrors.KindStateInvalid, "whitelist: engine not configured")
	}
	if err := requireAdmin(admin); err != nil {
		return nil, nil, err
	}
	rec, err := e.loadOwned(whitelistAccount)
	if err != nil {
		return nil, nil, err
	}
	if !rec.State {
		return nil, nil, coreerrors.New(coreerrors.KindStateInvalid, "whitelist: cannot update interest on an inactive collection")
	}
	rec.DailyInterestRate = rate
	e.persist(whitelistAccount.Key, rec)
	return rec, record.NewWhitelistRateUpdatedEvent(rec), nil
}

// RateOf returns the daily_interest_rate currently recorded for a whitelist
// account, the lookup Repay dispatch performs to compute the amount due
// without re-deriving the rate itself (spec.md §9 O-2).
func (e *Engine) RateOf(whitelistAccount runtime.AccountMeta) (uint64, error) {
	rec, err := e.loadOwned(whitelistAccount)
	if err != nil {
		return 0, err
	}
	return rec.DailyInterestRate, nil
}

// loadOwned decodes the whitelist record at account, verifying it is owned
// by this program (spec.md §4.3 failure: "record not owned by program").
func (e *Engine) loadOwned(account runtime.AccountMeta) (*record.WhitelistRecord, error) {
	if !account.Owner.Equal(e.programID) {
		return nil, coreerrors.New(coreerrors.KindUnauthorized, "whitelist: record not owned by program")
	}
	rec, err := record.DecodeWhitelistRecord(account.Data)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "whitelist: failed to decode record", err)
	}
	return rec, nil
}

func (e *Engine) persist(key identity.ID, rec *record.WhitelistRecord) {
	acct, _ := e.ledger.Account(key)
	acct.Key = key
	acct.Owner = e.programID
	acct.Data = rec.Encode()
	e.ledger.PutAccount(acct)
}
