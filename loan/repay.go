package loan

import (
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// RepayAccounts names the accounts spec.md §4.4.5 consults.
type RepayAccounts struct {
	Borrower                runtime.AccountMeta
	EscrowAccount           runtime.AccountMeta
	Vault                   identity.ID
	VaultNFTTokenAccount    identity.ID
	BorrowerNFTTokenAccount identity.ID
	NFTMint                 identity.ID
}

// Repay moves an escrow record from Active to Closed (spec.md §4.4.5): the
// borrower pays principal plus accrued interest to the lender and reclaims
// the NFT. amount is the caller's supplied repayment; Repay rejects it if
// it falls short of the computed due amount D. Repay is only permitted
// through the end of LoanTermDays; beyond that the lender must instead call
// ClaimDefaulted. The loan principal itself was already released to the
// borrower at AcceptOffer, so Repay's only transfer is borrower to lender.
func (e *Engine) Repay(a RepayAccounts, amount, dailyInterestRate uint64) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}
	if !a.Borrower.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "repay: borrower must sign")
		e.log("repay", err)
		return nil, nil, err
	}

	rec, err := e.loadEscrow(a.EscrowAccount)
	if err != nil {
		e.log("repay", err)
		return nil, nil, err
	}
	if !rec.NFTOwner.Equal(a.Borrower.Key) {
		err := coreerrors.New(coreerrors.KindUnauthorized, "repay: signer is not the depositing borrower")
		e.log("repay", err)
		return nil, nil, err
	}
	if rec.State() != record.StateActive {
		err := coreerrors.New(coreerrors.KindStateInvalid, "repay: escrow is not in the Active state")
		e.log("repay", err)
		return nil, nil, err
	}

	elapsed := uint64(e.ledger.Now().Unix()) - rec.LoanStart
	days := elapsed / config.DaySeconds
	if days > config.LoanTermDays {
		err := coreerrors.New(coreerrors.KindStateInvalid, "repay: loan term has elapsed, use claim_defaulted")
		e.log("repay", err)
		return nil, nil, err
	}

	due := amountDue(rec.LoanAmount, dailyInterestRate, days)
	if amount < due {
		err := coreerrors.New(coreerrors.KindAmountInsufficient, "repay: amount is below the amount due")
		e.log("repay", err)
		return nil, nil, err
	}
	if err := e.ledger.TransferNative(a.Borrower.Key, rec.Lender, due); err != nil {
		e.log("repay", err)
		return nil, nil, err
	}
	if err := e.ledger.TransferToken(a.NFTMint, a.VaultNFTTokenAccount, a.BorrowerNFTTokenAccount, a.Vault, 1); err != nil {
		e.log("repay", err)
		return nil, nil, err
	}

	rec.LoanTaken = false
	rec.Canceled = true
	e.persistEscrow(a.EscrowAccount.Key, rec)
	e.log("repay", nil, "escrow", a.EscrowAccount.Key.String(), "due", due)
	return rec, record.NewRepaidEvent(rec), nil
}
