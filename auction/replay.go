package auction

import (
	"context"
	"fmt"

	"github.com/cloudx-io/openbidding/core"
)

// ReplayProvider answers each round with the action a party recorded in a ledger.
// Rounds without a record resolve to a pass.
type ReplayProvider struct {
	byRound map[int]core.Action
}

// NewReplayProvider extracts partyID's actions from events.
func NewReplayProvider(partyID string, events []core.RoundEvent) *ReplayProvider {
	byRound := make(map[int]core.Action)
	for _, event := range events {
		if event.PartyID != partyID {
			continue
		}
		switch event.Action {
		case core.EventBid, core.EventRejected:
			byRound[event.Round] = core.Bid(event.AmountValue(), event.Rationale)
		default:
			byRound[event.Round] = core.Pass(event.Rationale)
		}
	}
	return &ReplayProvider{byRound: byRound}
}

// Decide implements DecisionProvider.
func (r *ReplayProvider) Decide(_ context.Context, view AuctionView, _ *Memory) (core.Action, error) {
	action, ok := r.byRound[view.Round]
	if !ok {
		return core.Pass("replay: no recorded action"), nil
	}
	return action, nil
}

// Replay re-runs an auction from a recorded ledger with the same parties and
// configuration. A deterministic run replays to the same outcome.
func Replay(ctx context.Context, item core.AuctionItem, parties []core.Party, events []core.RoundEvent, cfg Config) (*Result, error) {
	controller, err := NewController(cfg)
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, len(parties))
	for i, p := range parties {
		participants[i] = Participant{Party: p, Provider: NewReplayProvider(p.ID, events)}
	}

	if err := controller.Start(item, participants); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return controller.Run(ctx)
}
