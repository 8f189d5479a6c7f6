// Package program implements the single instruction dispatcher spec.md §2
// describes: one entry point routing a decoded, tagged instruction to the
// Loan State Machine or Whitelist Engine, following the teacher's
// StateProcessor.ApplyTransaction convention (core/state_transition.go) of
// switching on a leading type tag, buffering emitted events, and rolling
// them back on failure.
package program

import (
	"fmt"
	"log/slog"
	"time"

	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/instruction"
	"nftlend/loan"
	"nftlend/observability/logging"
	"nftlend/observability/metrics"
	"nftlend/oracle"
	"nftlend/record"
	"nftlend/runtime"
	"nftlend/whitelist"
)

// Program wires the decoded instruction stream to the two component
// engines spec.md §2's responsibility table assigns instructions to.
type Program struct {
	programID identity.ID
	loanEng   *loan.Engine
	wlEng     *whitelist.Engine
	metrics   *metrics.Registry
	logger    *slog.Logger
}

// New constructs a Program addressed under programID, backed by ledger and
// priceOracle, with the given risk parameters.
func New(programID identity.ID, ledger runtime.Ledger, priceOracle oracle.Bridge, params config.RiskParameters, logger *slog.Logger) *Program {
	if logger == nil {
		logger = logging.Setup("nftlend", "")
	}
	return &Program{
		programID: programID,
		loanEng:   loan.New(programID, ledger, priceOracle, params, logger),
		wlEng:     whitelist.New(programID, ledger),
		metrics:   metrics.Default(),
		logger:    logger,
	}
}

// Result is the outcome of a single Dispatch call: the event emitted by the
// handler, if any, and the instruction name for caller logging.
type Result struct {
	Instruction string
	Event       *record.Event
}

// Dispatch decodes data into a typed instruction and routes it to the
// corresponding handler, using positional entries of accounts the way
// spec.md §6.2's ordered account-list contract specifies. Unlike the
// teacher's multi-transaction-type state transitions, every instruction
// here executes fully synchronously within a single call: spec.md §5
// declares the model atomic, with no cross-instruction locking beyond the
// account-level write lock the runtime already enforces.
func (p *Program) Dispatch(data []byte, accounts []runtime.AccountMeta) (Result, error) {
	start := time.Now()
	inst, err := instruction.Decode(data)
	if err != nil {
		p.metrics.RecordFailure("unknown", "invalid_instruction")
		return Result{}, coreerrors.Wrap(coreerrors.KindInvalidInstruction, "program: failed to decode instruction", err)
	}

	name := inst.Tag.String()
	result, err := p.route(inst, accounts)
	p.metrics.RecordInstruction(name, err, time.Since(start))
	if err != nil {
		var kind coreerrors.Kind
		if pe, ok := err.(*coreerrors.ProgramError); ok {
			kind = pe.Kind
		}
		p.metrics.RecordFailure(name, kind.String())
		p.logger.Warn("instruction rejected", "instruction", name, "error", err)
		return Result{}, err
	}
	p.logger.Info("instruction applied", "instruction", name)
	result.Instruction = name
	return result, nil
}

func (p *Program) route(inst instruction.Instruction, accounts []runtime.AccountMeta) (Result, error) {
	switch inst.Tag {
	case instruction.TagDeposit:
		return p.dispatchDeposit(accounts)
	case instruction.TagOffer:
		return p.dispatchOffer(accounts, inst.Amount)
	case instruction.TagAcceptOffer:
		return p.dispatchAcceptOffer(accounts)
	case instruction.TagCancel:
		return p.dispatchCancel(accounts)
	case instruction.TagRepay:
		return p.dispatchRepay(accounts, inst.Amount)
	case instruction.TagClaimDefaulted:
		return p.dispatchClaimDefaulted(accounts)
	case instruction.TagCreateWhitelist:
		return p.dispatchCreateWhitelist(accounts, inst.CreatorCount)
	case instruction.TagDeactivateWhitelist:
		return p.dispatchDeactivateWhitelist(accounts)
	case instruction.TagUpdateInterest:
		return p.dispatchUpdateInterest(accounts, inst.Rate)
	default:
		return Result{}, coreerrors.New(coreerrors.KindInvalidInstruction, "program: unroutable instruction tag")
	}
}

func at(accounts []runtime.AccountMeta, i int) (runtime.AccountMeta, error) {
	if i >= len(accounts) {
		return runtime.AccountMeta{}, fmt.Errorf("program: expected at least %d accounts, got %d", i+1, len(accounts))
	}
	return accounts[i], nil
}

func (p *Program) dispatchDeposit(accounts []runtime.AccountMeta) (Result, error) {
	borrower, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	nftMint, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	borrowerTA, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 3)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 4)
	if err != nil {
		return Result{}, err
	}
	vaultTA, err := at(accounts, 5)
	if err != nil {
		return Result{}, err
	}
	metadata, err := at(accounts, 6)
	if err != nil {
		return Result{}, err
	}
	whitelistAcct, err := at(accounts, 7)
	if err != nil {
		return Result{}, err
	}

	_, event, err := p.loanEng.Deposit(loan.DepositAccounts{
		Borrower:                borrower,
		NFTMint:                 nftMint.Key,
		BorrowerNFTTokenAccount: borrowerTA.Key,
		EscrowAccount:           escrow.Key,
		Vault:                   vault.Key,
		VaultNFTTokenAccount:    vaultTA.Key,
		NFTMetadataAccount:      metadata.Key,
		Whitelist:               whitelistAcct,
	})
	return Result{Event: event}, err
}

func (p *Program) dispatchOffer(accounts []runtime.AccountMeta, amount uint64) (Result, error) {
	lender, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.loanEng.Offer(loan.OfferAccounts{
		Lender:        lender,
		EscrowAccount: escrow,
		Vault:         vault.Key,
	}, amount)
	return Result{Event: event}, err
}

func (p *Program) dispatchAcceptOffer(accounts []runtime.AccountMeta) (Result, error) {
	borrower, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.loanEng.AcceptOffer(loan.AcceptAccounts{
		Borrower:      borrower,
		EscrowAccount: escrow,
		Vault:         vault.Key,
	})
	return Result{Event: event}, err
}

func (p *Program) dispatchCancel(accounts []runtime.AccountMeta) (Result, error) {
	borrower, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	vaultTA, err := at(accounts, 3)
	if err != nil {
		return Result{}, err
	}
	borrowerTA, err := at(accounts, 4)
	if err != nil {
		return Result{}, err
	}
	mint, err := at(accounts, 5)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.loanEng.Cancel(loan.CancelAccounts{
		Borrower:                borrower,
		EscrowAccount:           escrow,
		Vault:                   vault.Key,
		VaultNFTTokenAccount:    vaultTA.Key,
		BorrowerNFTTokenAccount: borrowerTA.Key,
		NFTMint:                 mint.Key,
	})
	return Result{Event: event}, err
}

func (p *Program) dispatchRepay(accounts []runtime.AccountMeta, amount uint64) (Result, error) {
	borrower, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	vaultTA, err := at(accounts, 3)
	if err != nil {
		return Result{}, err
	}
	borrowerTA, err := at(accounts, 4)
	if err != nil {
		return Result{}, err
	}
	mint, err := at(accounts, 5)
	if err != nil {
		return Result{}, err
	}
	whitelistAcct, err := at(accounts, 6)
	if err != nil {
		return Result{}, err
	}
	rate, err := p.wlEng.RateOf(whitelistAcct)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.loanEng.Repay(loan.RepayAccounts{
		Borrower:                borrower,
		EscrowAccount:           escrow,
		Vault:                   vault.Key,
		VaultNFTTokenAccount:    vaultTA.Key,
		BorrowerNFTTokenAccount: borrowerTA.Key,
		NFTMint:                 mint.Key,
	}, amount, rate)
	return Result{Event: event}, err
}

func (p *Program) dispatchClaimDefaulted(accounts []runtime.AccountMeta) (Result, error) {
	lender, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	escrow, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	vault, err := at(accounts, 2)
	if err != nil {
		return Result{}, err
	}
	vaultTA, err := at(accounts, 3)
	if err != nil {
		return Result{}, err
	}
	lenderTA, err := at(accounts, 4)
	if err != nil {
		return Result{}, err
	}
	mint, err := at(accounts, 5)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.loanEng.ClaimDefaulted(loan.ClaimAccounts{
		Lender:                lender,
		EscrowAccount:         escrow,
		Vault:                 vault.Key,
		VaultNFTTokenAccount:  vaultTA.Key,
		LenderNFTTokenAccount: lenderTA.Key,
		NFTMint:               mint.Key,
	})
	return Result{Event: event}, err
}

func (p *Program) dispatchCreateWhitelist(accounts []runtime.AccountMeta, creatorCount uint64) (Result, error) {
	admin, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	whitelistAcct, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	const fixedAccounts = 2
	if uint64(len(accounts)) < fixedAccounts+creatorCount {
		return Result{}, fmt.Errorf("program: expected %d creator accounts, got %d", creatorCount, len(accounts)-fixedAccounts)
	}
	creators := make([]identity.ID, creatorCount)
	for i := range creators {
		creators[i] = accounts[fixedAccounts+i].Key
	}
	_, event, err := p.wlEng.CreateWhitelist(admin, admin.Key, whitelistAcct.Key, creators)
	return Result{Event: event}, err
}

func (p *Program) dispatchDeactivateWhitelist(accounts []runtime.AccountMeta) (Result, error) {
	admin, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	whitelistAcct, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.wlEng.DeactivateWhitelist(admin, whitelistAcct)
	return Result{Event: event}, err
}

func (p *Program) dispatchUpdateInterest(accounts []runtime.AccountMeta, rate uint64) (Result, error) {
	admin, err := at(accounts, 0)
	if err != nil {
		return Result{}, err
	}
	whitelistAcct, err := at(accounts, 1)
	if err != nil {
		return Result{}, err
	}
	_, event, err := p.wlEng.UpdateInterest(admin, whitelistAcct, rate)
	return Result{Event: event}, err
}
