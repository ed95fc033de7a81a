package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/cloudx-io/openbidding/core"
)

// incrementProvider bids start when there is no best bid, else best+step.
func incrementProvider(start, step float64) DecisionProvider {
	return DecisionFunc(func(_ context.Context, view AuctionView, _ *Memory) (core.Action, error) {
		if !view.HasBestBid() {
			return core.Bid(start, "opening bid"), nil
		}
		return core.Bid(core.AddAmounts(view.BestAmount(), step), "raise"), nil
	})
}

// scriptedProvider returns actions in order, then passes.
func scriptedProvider(actions ...core.Action) DecisionProvider {
	next := 0
	return DecisionFunc(func(_ context.Context, _ AuctionView, _ *Memory) (core.Action, error) {
		if next >= len(actions) {
			return core.Pass("script exhausted"), nil
		}
		action := actions[next]
		next++
		return action, nil
	})
}

func passProvider() DecisionProvider {
	return DecisionFunc(func(_ context.Context, _ AuctionView, _ *Memory) (core.Action, error) {
		return core.Pass("not interested"), nil
	})
}

func fixedBidProvider(amount float64) DecisionProvider {
	return DecisionFunc(func(_ context.Context, _ AuctionView, _ *Memory) (core.Action, error) {
		return core.Bid(amount, "fixed"), nil
	})
}

func failingProvider(err error) DecisionProvider {
	return DecisionFunc(func(_ context.Context, _ AuctionView, _ *Memory) (core.Action, error) {
		return core.Action{}, err
	})
}

// slowProvider sleeps for delay before answering and ignores its context.
func slowProvider(delay time.Duration, action core.Action) DecisionProvider {
	return DecisionFunc(func(_ context.Context, _ AuctionView, _ *Memory) (core.Action, error) {
		time.Sleep(delay)
		return action, nil
	})
}

var errProviderDown = errors.New("provider unavailable")

func participant(id string, budget float64, provider DecisionProvider) Participant {
	return Participant{Party: core.Party{ID: id, Budget: budget}, Provider: provider}
}

func startController(t *testing.T, cfg Config, participants ...Participant) *Controller {
	t.Helper()
	controller, err := NewController(cfg)
	assert.NoError(t, err)
	assert.NoError(t, controller.Start(core.AuctionItem{ID: "property-42", Description: "Two-bedroom flat"}, participants))
	return controller
}

func runToCompletion(t *testing.T, cfg Config, participants ...Participant) *Result {
	t.Helper()
	controller := startController(t, cfg, participants...)
	result, err := controller.Run(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, result)
	return result
}

// checkLedgerProperties asserts the ledger invariants that hold for every completed auction.
func checkLedgerProperties(t *testing.T, result *Result, budgets map[string]float64) {
	t.Helper()

	var best *core.BestBid
	lastAccepted := -1.0
	expectedRound := 0
	for _, event := range result.Ledger {
		if event.Round != expectedRound && event.Round != expectedRound+1 {
			t.Fatalf("round %d out of sequence after %d", event.Round, expectedRound)
		}
		expectedRound = event.Round

		if event.Action != core.EventBid {
			continue
		}
		amount := event.AmountValue()
		if amount > budgets[event.PartyID] {
			t.Errorf("BID %.2f from %s exceeds budget %.2f", amount, event.PartyID, budgets[event.PartyID])
		}
		if amount <= lastAccepted {
			t.Errorf("accepted bid %.2f is not above previous %.2f", amount, lastAccepted)
		}
		lastAccepted = amount
		best = &core.BestBid{PartyID: event.PartyID, Amount: amount}
	}

	if len(result.Ledger) > 0 && expectedRound != result.RoundsPlayed {
		t.Errorf("last ledger round %d, rounds played %d", expectedRound, result.RoundsPlayed)
	}

	if best == nil {
		if !result.Outcome.NoSale() {
			t.Errorf("expected no sale, got winner %+v", *result.Outcome.Winner)
		}
		return
	}
	if result.Outcome.NoSale() || *result.Outcome.Winner != *best {
		t.Errorf("outcome %+v does not match highest accepted bid %+v", result.Outcome.Winner, *best)
	}
}
