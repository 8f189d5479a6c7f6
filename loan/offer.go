package loan

import (
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// OfferAccounts names the accounts spec.md §4.4.2 consults.
type OfferAccounts struct {
	Lender        runtime.AccountMeta
	EscrowAccount runtime.AccountMeta
	Vault         identity.ID
}

// Offer moves an escrow record from Held to Offered (spec.md §4.4.2). The
// amount actually committed is not the caller's figure but the oracle-derived
// principal P = price_of(collection) / LTVDenominator; amount is only a
// lender-supplied floor that Offer rejects if P would exceed it. Offer funds
// and records exactly P.
func (e *Engine) Offer(a OfferAccounts, amount uint64) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}
	if !a.Lender.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "offer: lender must sign")
		e.log("offer", err)
		return nil, nil, err
	}
	if amount == 0 {
		err := coreerrors.New(coreerrors.KindAmountInsufficient, "offer: loan_amt must be > 0")
		e.log("offer", err)
		return nil, nil, err
	}

	rec, err := e.loadEscrow(a.EscrowAccount)
	if err != nil {
		e.log("offer", err)
		return nil, nil, err
	}
	if rec.State() != record.StateHeld {
		err := coreerrors.New(coreerrors.KindStateInvalid, "offer: escrow is not in the Held state")
		e.log("offer", err)
		return nil, nil, err
	}

	floor, err := e.oracle.PriceOf(rec)
	if err != nil {
		e.log("offer", err)
		return nil, nil, err
	}
	principal := floor / config.LTVDenominator
	if amount < principal {
		err := coreerrors.New(coreerrors.KindAmountInsufficient, "offer: amount is below the oracle-derived principal")
		e.log("offer", err)
		return nil, nil, err
	}

	if err := e.ledger.TransferNative(a.Lender.Key, a.Vault, principal); err != nil {
		e.log("offer", err)
		return nil, nil, err
	}

	rec.Lender = a.Lender.Key
	rec.LoanAmount = principal
	rec.LoanOffered = true
	e.persistEscrow(a.EscrowAccount.Key, rec)
	e.log("offer", nil, "escrow", a.EscrowAccount.Key.String(), "loan_amt", principal)
	return rec, record.NewOfferEvent(rec), nil
}
