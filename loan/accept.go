package loan

import (
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// AcceptAccounts names the accounts spec.md §4.4.3 consults.
type AcceptAccounts struct {
	Borrower      runtime.AccountMeta
	EscrowAccount runtime.AccountMeta
	Vault         identity.ID
}

// AcceptOffer moves an escrow record from Offered to Active (spec.md
// §4.4.3): the borrower accepts the lender's standing offer, starting the
// loan term clock and releasing the vault's committed principal to the
// borrower, authorized by the vault's derivation seeds.
func (e *Engine) AcceptOffer(a AcceptAccounts) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}
	if !a.Borrower.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "accept_offer: borrower must sign")
		e.log("accept_offer", err)
		return nil, nil, err
	}

	rec, err := e.loadEscrow(a.EscrowAccount)
	if err != nil {
		e.log("accept_offer", err)
		return nil, nil, err
	}
	if !rec.NFTOwner.Equal(a.Borrower.Key) {
		err := coreerrors.New(coreerrors.KindUnauthorized, "accept_offer: signer is not the depositing borrower")
		e.log("accept_offer", err)
		return nil, nil, err
	}
	if rec.State() != record.StateOffered {
		err := coreerrors.New(coreerrors.KindStateInvalid, "accept_offer: escrow is not in the Offered state")
		e.log("accept_offer", err)
		return nil, nil, err
	}

	if err := e.ledger.TransferNative(a.Vault, a.Borrower.Key, rec.LoanAmount); err != nil {
		e.log("accept_offer", err)
		return nil, nil, err
	}

	rec.LoanTaken = true
	rec.LoanStart = uint64(e.ledger.Now().Unix())
	e.persistEscrow(a.EscrowAccount.Key, rec)
	e.log("accept_offer", nil, "escrow", a.EscrowAccount.Key.String(), "loan_start", rec.LoanStart)
	return rec, record.NewOfferAcceptedEvent(rec), nil
}
