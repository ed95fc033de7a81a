package auction

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/openbidding/core"
)

func inProgressState() *core.AuctionRunState {
	state := core.NewAuctionRunState("run-1", core.AuctionItem{ID: "item"})
	state.Phase = core.PhaseInProgress
	return state
}

func TestRunRound_IncrementsRoundAndRecordsEveryParty(t *testing.T) {
	coordinator := NewCoordinator([]Participant{
		participant("a", 1000, fixedBidProvider(100)),
		participant("b", 1000, passProvider()),
		participant("c", 50, fixedBidProvider(500)),
	}, Config{})
	state := inProgressState()

	summary, err := coordinator.RunRound(context.Background(), state)
	assert.NoError(t, err)

	check.Equal(t, 1, state.Round)
	check.Equal(t, 1, summary.Round)
	check.Equal(t, 1, summary.AcceptedBids)
	check.Equal(t, 1, summary.Rejected)
	check.Equal(t, 0, summary.Degraded)
	check.True(t, summary.AnyBid())
	check.Equal(t, core.BestBid{PartyID: "a", Amount: 100}, *summary.BestBid)

	assert.Equal(t, 3, len(summary.Events))
	check.Equal(t, "a", summary.Events[0].PartyID)
	check.Equal(t, core.EventBid, summary.Events[0].Action)
	check.Equal(t, core.EventPass, summary.Events[1].Action)
	check.Equal(t, core.EventRejected, summary.Events[2].Action)
	check.Equal(t, core.ReasonExceedsBudget, summary.Events[2].RejectionReason)

	summary, err = coordinator.RunRound(context.Background(), state)
	assert.NoError(t, err)
	check.Equal(t, 2, summary.Round)
	check.False(t, summary.AnyBid())
	check.Equal(t, core.ReasonNotHigher, summary.Events[0].RejectionReason)
	check.Equal(t, 6, state.Ledger.Len())
}

func TestRunRound_CountsDegradedTurns(t *testing.T) {
	coordinator := NewCoordinator([]Participant{
		participant("a", 1000, failingProvider(errProviderDown)),
		participant("b", 1000, fixedBidProvider(-1)),
	}, Config{})

	summary, err := coordinator.RunRound(context.Background(), inProgressState())
	assert.NoError(t, err)
	check.Equal(t, 2, summary.Degraded)
	check.Equal(t, 0, summary.AcceptedBids)
	check.Nil(t, summary.BestBid)
}

func TestRunRound_InvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		state func() *core.AuctionRunState
	}{
		{"negative round", func() *core.AuctionRunState {
			state := inProgressState()
			state.Round = -1
			return state
		}},
		{"not started", func() *core.AuctionRunState {
			return core.NewAuctionRunState("run-1", core.AuctionItem{ID: "item"})
		}},
		{"closed", func() *core.AuctionRunState {
			state := inProgressState()
			state.Phase = core.PhaseClosed
			return state
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coordinator := NewCoordinator([]Participant{participant("a", 100, passProvider())}, Config{})
			state := tt.state()
			round := state.Round

			_, err := coordinator.RunRound(context.Background(), state)
			check.True(t, errors.Is(err, core.ErrInvariantViolation))

			var invariantErr *core.InvariantError
			check.True(t, errors.As(err, &invariantErr))
			check.Equal(t, "coordinator.round", invariantErr.Op)
			check.Equal(t, round, state.Round)
			check.Equal(t, 0, state.Ledger.Len())
		})
	}
}

func TestRunRound_FrozenLedgerAbortsRound(t *testing.T) {
	coordinator := NewCoordinator([]Participant{participant("a", 100, passProvider())}, Config{})
	state := inProgressState()
	state.Ledger.Freeze()

	_, err := coordinator.RunRound(context.Background(), state)
	check.True(t, IsInvariantViolation(err))
	check.True(t, errors.Is(err, core.ErrLedgerFrozen))
}

func TestRunRound_MemoriesAreIsolated(t *testing.T) {
	writer := DecisionFunc(func(_ context.Context, _ AuctionView, memory *Memory) (core.Action, error) {
		memory.AddTurn("what now?", "pass")
		return core.Pass("wrote memory"), nil
	})
	reader := DecisionFunc(func(_ context.Context, _ AuctionView, memory *Memory) (core.Action, error) {
		if memory.Len() != 0 {
			return core.Action{}, errors.New("saw foreign memory")
		}
		return core.Pass("clean"), nil
	})

	coordinator := NewCoordinator([]Participant{
		participant("writer", 100, writer),
		participant("reader", 100, reader),
	}, Config{})

	summary, err := coordinator.RunRound(context.Background(), inProgressState())
	assert.NoError(t, err)
	check.Equal(t, 0, summary.Degraded)
	check.Equal(t, 2, coordinator.Memory("writer").Len())
	check.Equal(t, 0, coordinator.Memory("reader").Len())
}

func TestSameBest(t *testing.T) {
	check.True(t, sameBest(nil, nil))
	check.False(t, sameBest(nil, &core.BestBid{PartyID: "a", Amount: 1}))
	check.False(t, sameBest(&core.BestBid{PartyID: "a", Amount: 1}, nil))
	check.True(t, sameBest(&core.BestBid{PartyID: "a", Amount: 1}, &core.BestBid{PartyID: "a", Amount: 1}))
	check.False(t, sameBest(&core.BestBid{PartyID: "a", Amount: 1}, &core.BestBid{PartyID: "b", Amount: 1}))
}
