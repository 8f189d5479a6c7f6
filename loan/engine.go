// Package loan implements the Loan State Machine (spec.md §4.4): the six
// handlers that drive an escrowed NFT through deposit, offer, acceptance,
// and its terminal transition (repay, default, or cancel), enforcing the
// account-derivation and state invariants spec.md §3 and §4.4 declare. The
// Engine shape mirrors the teacher's native/lending.Engine: a struct wired
// against a storage seam (runtime.Ledger) and an external price collaborator
// (oracle.Bridge), exposing one method per instruction.
package loan

import (
	"log/slog"

	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/oracle"
	"nftlend/record"
	"nftlend/runtime"
)

// Engine drives the loan lifecycle for escrow records addressed under
// programID.
type Engine struct {
	programID identity.ID
	ledger    runtime.Ledger
	oracle    oracle.Bridge
	params    config.RiskParameters
	logger    *slog.Logger
}

// New constructs a loan Engine. logger may be nil, in which case
// slog.Default() is used.
func New(programID identity.ID, ledger runtime.Ledger, priceOracle oracle.Bridge, params config.RiskParameters, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{programID: programID, ledger: ledger, oracle: priceOracle, params: params, logger: logger}
}

func (e *Engine) checkConfigured() error {
	if e == nil || e.ledger == nil {
		return coreerrors.New(coreerrors.KindStateInvalid, "loan: engine not configured")
	}
	return nil
}

// loadEscrow decodes the escrow record at account and verifies program
// ownership, the check every loan-state-machine handler performs before
// inspecting record fields (spec.md §3.1 "mutated only by handlers that
// verify owner == program_id").
func (e *Engine) loadEscrow(account runtime.AccountMeta) (*record.EscrowRecord, error) {
	if !account.Owner.Equal(e.programID) {
		return nil, coreerrors.New(coreerrors.KindUnauthorized, "loan: escrow account not owned by program")
	}
	rec, err := record.DecodeEscrowRecord(account.Data)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "loan: failed to decode escrow record", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "loan: escrow record violates invariants", err)
	}
	return rec, nil
}

// persistEscrow writes rec back to the account at key, preserving program
// ownership.
func (e *Engine) persistEscrow(key identity.ID, rec *record.EscrowRecord) {
	acct, _ := e.ledger.Account(key)
	acct.Key = key
	acct.Owner = e.programID
	acct.Data = rec.Encode()
	e.ledger.PutAccount(acct)
}

func (e *Engine) log(op string, err error, attrs ...any) {
	if err != nil {
		e.logger.Warn("loan instruction failed", append([]any{"op", op, "error", err}, attrs...)...)
		return
	}
	e.logger.Info("loan instruction succeeded", append([]any{"op", op}, attrs...)...)
}
