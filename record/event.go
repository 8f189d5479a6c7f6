package record

import "strconv"

// Event is a typed event emitted during a state transition, mirroring the
// teacher's core/types.Event shape (type + string attribute bag).
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Event type constants, one per successful handler invocation
// (SPEC_FULL.md "Supplemented features" #1).
const (
	EventTypeDeposit             = "nftlend.deposit"
	EventTypeOffer               = "nftlend.offer"
	EventTypeOfferAccepted       = "nftlend.offer_accepted"
	EventTypeCanceled            = "nftlend.canceled"
	EventTypeRepaid              = "nftlend.repaid"
	EventTypeDefaulted           = "nftlend.defaulted"
	EventTypeWhitelistCreated    = "nftlend.whitelist_created"
	EventTypeWhitelistDeactivate = "nftlend.whitelist_deactivated"
	EventTypeWhitelistRateUpdate = "nftlend.whitelist_rate_updated"
)

func newEscrowEvent(eventType string, e *EscrowRecord) *Event {
	attrs := map[string]string{
		"nft_mint":   e.NFTMint.String(),
		"nft_owner":  e.NFTOwner.String(),
		"lender":     e.Lender.String(),
		"loan_amt":   strconv.FormatUint(e.LoanAmount, 10),
		"loan_start": strconv.FormatUint(e.LoanStart, 10),
		"state":      e.State().String(),
	}
	return &Event{Type: eventType, Attributes: attrs}
}

// NewDepositEvent reports a successful Deposit (Empty -> Held).
func NewDepositEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeDeposit, e) }

// NewOfferEvent reports a successful Offer (Held -> Offered).
func NewOfferEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeOffer, e) }

// NewOfferAcceptedEvent reports a successful AcceptOffer (Offered -> Active).
func NewOfferAcceptedEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeOfferAccepted, e) }

// NewCanceledEvent reports a successful Cancel (Held|Offered -> Closed).
func NewCanceledEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeCanceled, e) }

// NewRepaidEvent reports a successful Repay (Active -> Closed).
func NewRepaidEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeRepaid, e) }

// NewDefaultedEvent reports a successful ClaimDefaulted (Active -> Closed).
func NewDefaultedEvent(e *EscrowRecord) *Event { return newEscrowEvent(EventTypeDefaulted, e) }

func newWhitelistEvent(eventType string, w *WhitelistRecord) *Event {
	attrs := map[string]string{
		"first_creator": "",
		"state":         strconv.FormatBool(w.State),
		"rate":          strconv.FormatUint(w.DailyInterestRate, 10),
	}
	if len(w.Producer) > 0 {
		attrs["first_creator"] = w.Producer[0].String()
	}
	return &Event{Type: eventType, Attributes: attrs}
}

// NewWhitelistCreatedEvent reports a successful CreateWhitelist.
func NewWhitelistCreatedEvent(w *WhitelistRecord) *Event {
	return newWhitelistEvent(EventTypeWhitelistCreated, w)
}

// NewWhitelistDeactivatedEvent reports a successful DeactivateWhitelist.
func NewWhitelistDeactivatedEvent(w *WhitelistRecord) *Event {
	return newWhitelistEvent(EventTypeWhitelistDeactivate, w)
}

// NewWhitelistRateUpdatedEvent reports a successful UpdateInterest.
func NewWhitelistRateUpdatedEvent(w *WhitelistRecord) *Event {
	return newWhitelistEvent(EventTypeWhitelistRateUpdate, w)
}
