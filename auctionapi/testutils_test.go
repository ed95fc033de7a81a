package auctionapi

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/cloudx-io/openbidding/core"
)

func amountPtr(v float64) *float64 {
	return &v
}

// closedRunState builds a closed two-party run where "y" wins at 150000.
func closedRunState(t *testing.T) (*core.AuctionRunState, []core.Party) {
	t.Helper()

	state := core.NewAuctionRunState("run-7", core.AuctionItem{ID: "property-42", Description: "Two-bedroom flat"})
	state.Phase = core.PhaseInProgress
	state.StartedAt = time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)

	events := []core.RoundEvent{
		{Round: 1, PartyID: "x", Action: core.EventBid, Amount: amountPtr(120000), Rationale: "opening"},
		{Round: 1, PartyID: "y", Action: core.EventBid, Amount: amountPtr(150000), Rationale: "fits my needs"},
		{Round: 2, PartyID: "x", Action: core.EventRejected, Amount: amountPtr(160000), Rationale: "stretch", RejectionReason: core.ReasonExceedsBudget},
		{Round: 2, PartyID: "y", Action: core.EventPass, Rationale: "holding"},
	}
	for _, event := range events {
		assert.NoError(t, state.Ledger.Append(event))
	}

	state.Round = 2
	state.Phase = core.PhaseClosed
	state.ClosedAt = state.StartedAt.Add(3 * time.Second)
	state.Ledger.Freeze()

	return state, []core.Party{{ID: "x", Budget: 140000}, {ID: "y", Budget: 200000}}
}

func testTranscript(t *testing.T) *Transcript {
	t.Helper()
	state, parties := closedRunState(t)
	transcript, err := NewTranscript(state, parties, "policy")
	assert.NoError(t, err)
	return transcript
}
