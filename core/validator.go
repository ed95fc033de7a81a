package core

// Rejection reasons recorded on REJECTED ledger events.
const (
	ReasonExceedsBudget = "exceeds budget"
	ReasonNotHigher     = "not strictly higher than current best"
	ReasonSuperseded    = "superseded"
)

// Verdict is the result of validating one action.
type Verdict struct {
	Accepted bool
	Reason   string
}

// Accepted is the verdict for an admissible action.
var Accepted = Verdict{Accepted: true}

// Rejected builds a rejection verdict with the given reason.
func Rejected(reason string) Verdict {
	return Verdict{Reason: reason}
}

// ValidateBid decides whether an action is admissible for a party given the current best bid.
//
// Rules, applied in order:
//  1. A pass is always accepted
//  2. A bid above the party budget is rejected
//  3. A bid at or below the current best (when one exists) is rejected
//  4. Otherwise the bid is accepted
func ValidateBid(action Action, party Party, best *BestBid) Verdict {
	if !action.IsBid() {
		return Accepted
	}

	if !BidWithinBudget(action.Amount, party.Budget) {
		return Rejected(ReasonExceedsBudget)
	}

	if best != nil && !BidExceedsBest(action.Amount, best.Amount) {
		return Rejected(ReasonNotHigher)
	}

	return Accepted
}

// NewRoundEvent converts a validated action into the ledger event that records it.
func NewRoundEvent(round int, partyID string, action Action, verdict Verdict) RoundEvent {
	event := RoundEvent{
		Round:     round,
		PartyID:   partyID,
		Rationale: action.Rationale,
	}

	switch {
	case !action.IsBid():
		event.Action = EventPass
	case verdict.Accepted:
		amount := action.Amount
		event.Action = EventBid
		event.Amount = &amount
	default:
		amount := action.Amount
		event.Action = EventRejected
		event.Amount = &amount
		event.RejectionReason = verdict.Reason
	}

	return event
}
