package loan

import (
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// ClaimAccounts names the accounts spec.md §4.4.6 consults.
type ClaimAccounts struct {
	Lender                runtime.AccountMeta
	EscrowAccount         runtime.AccountMeta
	Vault                 identity.ID
	VaultNFTTokenAccount  identity.ID
	LenderNFTTokenAccount identity.ID
	NFTMint               identity.ID
}

// ClaimDefaulted moves an escrow record from Active to Closed (spec.md
// §4.4.6): once the loan term has fully elapsed without repayment, the
// lender claims the collateral NFT directly.
func (e *Engine) ClaimDefaulted(a ClaimAccounts) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}
	if !a.Lender.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "claim_defaulted: lender must sign")
		e.log("claim_defaulted", err)
		return nil, nil, err
	}

	rec, err := e.loadEscrow(a.EscrowAccount)
	if err != nil {
		e.log("claim_defaulted", err)
		return nil, nil, err
	}
	if !rec.Lender.Equal(a.Lender.Key) {
		err := coreerrors.New(coreerrors.KindUnauthorized, "claim_defaulted: signer is not the funding lender")
		e.log("claim_defaulted", err)
		return nil, nil, err
	}
	if rec.State() != record.StateActive {
		err := coreerrors.New(coreerrors.KindStateInvalid, "claim_defaulted: escrow is not in the Active state")
		e.log("claim_defaulted", err)
		return nil, nil, err
	}

	elapsed := uint64(e.ledger.Now().Unix()) - rec.LoanStart
	days := elapsed / config.DaySeconds
	if days <= config.LoanTermDays {
		err := coreerrors.New(coreerrors.KindStateInvalid, "claim_defaulted: loan term has not yet elapsed")
		e.log("claim_defaulted", err)
		return nil, nil, err
	}

	if err := e.ledger.EnsureTokenAccount(a.LenderNFTTokenAccount, a.Lender.Key, a.NFTMint); err != nil {
		return nil, nil, err
	}
	if err := e.ledger.TransferToken(a.NFTMint, a.VaultNFTTokenAccount, a.LenderNFTTokenAccount, a.Vault, 1); err != nil {
		e.log("claim_defaulted", err)
		return nil, nil, err
	}

	rec.LoanTaken = false
	rec.Canceled = true
	e.persistEscrow(a.EscrowAccount.Key, rec)
	e.log("claim_defaulted", nil, "escrow", a.EscrowAccount.Key.String())
	return rec, record.NewDefaultedEvent(rec), nil
}
