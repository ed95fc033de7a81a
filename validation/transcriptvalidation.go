package validation

import (
	"fmt"

	"github.com/cloudx-io/openbidding/auctionapi"
	"github.com/cloudx-io/openbidding/core"
)

// ValidateTranscript audits a transcript independently of the engine that produced it.
// It verifies:
// - Every recorded round is complete and in party turn order
// - No accepted bid exceeds its party's budget
// - Accepted bids are strictly increasing
// - Every rejection carries the reason the bid rules would give
// - Winner and runner-up match the ledger
// - The ledger hash matches the events
//
// Returns a TranscriptValidationResult (call result.IsValid() to check overall status)
// or an error when the transcript is missing.
func ValidateTranscript(transcript *auctionapi.Transcript) (*TranscriptValidationResult, error) {
	if transcript == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	result := &TranscriptValidationResult{}
	budgets := partyBudgets(transcript, result)

	result.RoundsValid = validateRounds(transcript, result)
	result.BudgetsValid = validateBudgets(transcript, budgets, result)
	result.IncreasingValid = validateIncreasing(transcript, result)
	result.RejectionsValid = validateRejections(transcript, budgets, result)
	result.OutcomeValid = validateOutcome(transcript, result)
	result.LedgerHashValid = validateLedgerHash(transcript, result)

	return result, nil
}

func partyBudgets(transcript *auctionapi.Transcript, result *TranscriptValidationResult) map[string]float64 {
	budgets := make(map[string]float64, len(transcript.Parties))
	for _, p := range transcript.Parties {
		if _, dup := budgets[p.ID]; dup {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Duplicate party %q in transcript", p.ID))
		}
		budgets[p.ID] = p.Budget
	}
	return budgets
}

func validateRounds(transcript *auctionapi.Transcript, result *TranscriptValidationResult) bool {
	parties := transcript.Parties
	if len(parties) == 0 {
		result.ValidationDetails = append(result.ValidationDetails, "Round validation failed: transcript lists no parties")
		return false
	}

	events := transcript.Events
	if len(events) != transcript.RoundsPlayed*len(parties) {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round validation failed: %d events for %d rounds of %d parties", len(events), transcript.RoundsPlayed, len(parties)))
		return false
	}

	for i, event := range events {
		expectedRound := i/len(parties) + 1
		expectedParty := parties[i%len(parties)].ID
		if event.Round != expectedRound || event.PartyID != expectedParty {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round validation failed: event %d is round %d party %s, expected round %d party %s", i, event.Round, event.PartyID, expectedRound, expectedParty))
			return false
		}
		if err := checkEventShape(event); err != nil {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round validation failed: event %d: %v", i, err))
			return false
		}
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round validation passed: %d complete rounds", transcript.RoundsPlayed))
	return true
}

func checkEventShape(event core.RoundEvent) error {
	switch event.Action {
	case core.EventPass:
		if event.Amount != nil || event.RejectionReason != "" {
			return fmt.Errorf("PASS carries an amount or rejection reason")
		}
	case core.EventBid:
		if event.Amount == nil || event.RejectionReason != "" {
			return fmt.Errorf("BID must carry an amount and no rejection reason")
		}
	case core.EventRejected:
		if event.Amount == nil || event.RejectionReason == "" {
			return fmt.Errorf("REJECTED must carry an amount and a rejection reason")
		}
	default:
		return fmt.Errorf("unknown action %q", event.Action)
	}
	return nil
}

func validateBudgets(transcript *auctionapi.Transcript, budgets map[string]float64, result *TranscriptValidationResult) bool {
	valid := true
	for _, event := range transcript.Events {
		if event.Action != core.EventBid {
			continue
		}
		budget, ok := budgets[event.PartyID]
		if !ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Budget validation failed: round %d bid from unknown party %s", event.Round, event.PartyID))
			valid = false
			continue
		}
		if !core.BidWithinBudget(event.AmountValue(), budget) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Budget validation failed: round %d party %s bid %.6f over budget %.6f", event.Round, event.PartyID, event.AmountValue(), budget))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, "Budget validation passed: all accepted bids within budget")
	}
	return valid
}

func validateIncreasing(transcript *auctionapi.Transcript, result *TranscriptValidationResult) bool {
	var previous *core.RoundEvent
	for i := range transcript.Events {
		event := &transcript.Events[i]
		if event.Action != core.EventBid {
			continue
		}
		if previous != nil && !core.BidExceedsBest(event.AmountValue(), previous.AmountValue()) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Increasing validation failed: round %d party %s bid %.6f does not exceed %.6f", event.Round, event.PartyID, event.AmountValue(), previous.AmountValue()))
			return false
		}
		previous = event
	}

	result.ValidationDetails = append(result.ValidationDetails, "Increasing validation passed: accepted bids strictly increase")
	return true
}

// validateRejections re-applies the bid rules to every rejected bid against the
// best bid at that point of the ledger.
func validateRejections(transcript *auctionapi.Transcript, budgets map[string]float64, result *TranscriptValidationResult) bool {
	valid := true
	rejected := 0
	var best *core.BestBid

	for _, event := range transcript.Events {
		switch event.Action {
		case core.EventBid:
			best = &core.BestBid{PartyID: event.PartyID, Amount: event.AmountValue()}
			continue
		case core.EventRejected:
		default:
			continue
		}
		rejected++

		party := core.Party{ID: event.PartyID, Budget: budgets[event.PartyID]}
		verdict := core.ValidateBid(core.Bid(event.AmountValue(), event.Rationale), party, best)

		var consistent bool
		switch event.RejectionReason {
		case core.ReasonExceedsBudget, core.ReasonNotHigher:
			consistent = !verdict.Accepted && verdict.Reason == event.RejectionReason
		case core.ReasonSuperseded:
			// Superseded bids were admissible against the live best bid; only their view was stale.
			consistent = verdict.Accepted
		default:
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Rejection validation failed: round %d party %s has unknown reason %q", event.Round, event.PartyID, event.RejectionReason))
			valid = false
			continue
		}

		if !consistent {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Rejection validation failed: round %d party %s rejected as %q but rules give %q", event.Round, event.PartyID, event.RejectionReason, verdictText(verdict)))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Rejection validation passed: %d rejections consistent", rejected))
	}
	return valid
}

func verdictText(v core.Verdict) string {
	if v.Accepted {
		return "accepted"
	}
	return v.Reason
}

func validateOutcome(transcript *auctionapi.Transcript, result *TranscriptValidationResult) bool {
	standings := core.RankParties(transcript.Events)
	expected := standings.Winner()
	winner := transcript.Outcome.Winner

	switch {
	case expected == nil && winner == nil:
		result.ValidationDetails = append(result.ValidationDetails, "Outcome validation passed: no sale and no accepted bids")
	case expected == nil:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation failed: winner %s at %.6f but ledger has no accepted bids", winner.PartyID, winner.Amount))
		return false
	case winner == nil:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation failed: no sale but ledger best is %s at %.6f", expected.PartyID, expected.Amount))
		return false
	case *winner != *expected:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation failed: winner %s at %.6f, ledger best is %s at %.6f", winner.PartyID, winner.Amount, expected.PartyID, expected.Amount))
		return false
	default:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation passed: %s wins at %.6f", winner.PartyID, winner.Amount))
	}

	runnerUp := standings.RunnerUp()
	if !sameBid(runnerUp, transcript.RunnerUp) {
		result.ValidationDetails = append(result.ValidationDetails, "Outcome validation failed: runner-up does not match ledger")
		return false
	}
	return true
}

func sameBid(a, b *core.BestBid) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func validateLedgerHash(transcript *auctionapi.Transcript, result *TranscriptValidationResult) bool {
	computed := core.ComputeLedgerHash(transcript.Events)
	if computed == transcript.LedgerHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Ledger hash validation passed: %s", computed))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Ledger hash mismatch: computed %s, transcript has %s", computed, transcript.LedgerHash))
	return false
}
