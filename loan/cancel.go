package loan

import (
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// CancelAccounts names the accounts spec.md §4.4.4 consults.
type CancelAccounts struct {
	Borrower                runtime.AccountMeta
	EscrowAccount           runtime.AccountMeta
	Vault                   identity.ID
	VaultNFTTokenAccount    identity.ID
	BorrowerNFTTokenAccount identity.ID
	NFTMint                 identity.ID
}

// Cancel unwinds an escrow record from Held or Offered to Closed (spec.md
// §4.4.4): the borrower reclaims the deposited NFT. If a lender offer was
// already funded into the vault, its principal is refunded per the
// configured CancelRefundTarget (spec.md §9 O-1).
func (e *Engine) Cancel(a CancelAccounts) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}
	if !a.Borrower.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "cancel: borrower must sign")
		e.log("cancel", err)
		return nil, nil, err
	}

	rec, err := e.loadEscrow(a.EscrowAccount)
	if err != nil {
		e.log("cancel", err)
		return nil, nil, err
	}
	if !rec.NFTOwner.Equal(a.Borrower.Key) {
		err := coreerrors.New(coreerrors.KindUnauthorized, "cancel: signer is not the depositing borrower")
		e.log("cancel", err)
		return nil, nil, err
	}
	state := rec.State()
	if state != record.StateHeld && state != record.StateOffered {
		err := coreerrors.New(coreerrors.KindStateInvalid, "cancel: escrow must be Held or Offered")
		e.log("cancel", err)
		return nil, nil, err
	}

	if state == record.StateOffered {
		refundTarget := rec.Lender
		if e.params.CancelRefund == config.RefundToBorrower {
			refundTarget = a.Borrower.Key
		}
		if err := e.ledger.TransferNative(a.Vault, refundTarget, rec.LoanAmount); err != nil {
			e.log("cancel", err)
			return nil, nil, err
		}
	}

	if err := e.ledger.TransferToken(a.NFTMint, a.VaultNFTTokenAccount, a.BorrowerNFTTokenAccount, a.Vault, 1); err != nil {
		e.log("cancel", err)
		return nil, nil, err
	}

	rec.Canceled = true
	e.persistEscrow(a.EscrowAccount.Key, rec)
	e.log("cancel", nil, "escrow", a.EscrowAccount.Key.String())
	return rec, record.NewCanceledEvent(rec), nil
}
