package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cloudx-io/openbidding/core"
)

// RoundSummary describes one completed round.
type RoundSummary struct {
	Round        int
	AcceptedBids int
	Rejected     int
	Degraded     int
	BestBid      *core.BestBid
	Events       []core.RoundEvent
}

// AnyBid reports whether at least one bid was accepted in the round.
func (s RoundSummary) AnyBid() bool {
	return s.AcceptedBids > 0
}

// Coordinator runs single bidding rounds across all participants in a fixed order.
// It is not safe for concurrent use; the controller drives it from one goroutine.
type Coordinator struct {
	participants []Participant
	memories     map[string]*Memory
	timeout      time.Duration
	parallel     bool
	log          zerolog.Logger
}

// NewCoordinator builds a coordinator. The participant order is the turn order
// and decides precedence within a round.
func NewCoordinator(participants []Participant, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()

	ordered := make([]Participant, len(participants))
	copy(ordered, participants)

	memories := make(map[string]*Memory, len(participants))
	for _, p := range participants {
		memories[p.ID] = NewMemory()
	}

	return &Coordinator{
		participants: ordered,
		memories:     memories,
		timeout:      cfg.DecisionTimeout,
		parallel:     cfg.ParallelFetch,
		log:          *cfg.Logger,
	}
}

// Memory returns the private memory of a participant, or nil for an unknown ID.
func (c *Coordinator) Memory(partyID string) *Memory {
	return c.memories[partyID]
}

type turn struct {
	action   core.Action
	view     AuctionView
	degraded error
}

// RunRound executes exactly one round against state: it increments the round,
// asks every participant in order, validates each action, appends the event and
// updates the best bid immediately so later participants see it.
func (c *Coordinator) RunRound(ctx context.Context, state *core.AuctionRunState) (RoundSummary, error) {
	if state.Round < 0 {
		return RoundSummary{}, &core.InvariantError{Op: "coordinator.round", Detail: fmt.Sprintf("negative round count %d", state.Round)}
	}
	if state.Phase != core.PhaseInProgress {
		return RoundSummary{}, &core.InvariantError{Op: "coordinator.round", Detail: fmt.Sprintf("round requested in phase %s", state.Phase)}
	}

	state.Round++
	summary := RoundSummary{Round: state.Round}
	ctx = c.log.With().Int("round", state.Round).Logger().WithContext(ctx)

	var prefetched []turn
	if c.parallel {
		prefetched = c.fetchAll(ctx, state)
	}

	for i, p := range c.participants {
		var t turn
		if c.parallel {
			t = prefetched[i]
		} else {
			t = c.fetch(ctx, state, p)
		}

		best := state.CurrentBest()
		verdict := core.ValidateBid(t.action, p.Party, best)
		if verdict.Accepted && t.action.IsBid() && !sameBest(t.view.BestBid, best) {
			// Decision was made against a best bid that has since moved.
			verdict = core.Rejected(core.ReasonSuperseded)
		}

		event := core.NewRoundEvent(state.Round, p.ID, t.action, verdict)
		if err := state.Ledger.Append(event); err != nil {
			return summary, fmt.Errorf("round %d party %s: %w", state.Round, p.ID, err)
		}

		switch event.Action {
		case core.EventBid:
			summary.AcceptedBids++
		case core.EventRejected:
			summary.Rejected++
		}
		if t.degraded != nil {
			summary.Degraded++
		}

		c.log.Debug().
			Int("round", state.Round).
			Str("party", p.ID).
			Str("action", string(event.Action)).
			Float64("amount", event.AmountValue()).
			Str("reason", event.RejectionReason).
			Msg("party turn recorded")
	}

	summary.BestBid = state.CurrentBest()
	summary.Events = state.Ledger.EventsForRound(state.Round)
	return summary, nil
}

func (c *Coordinator) viewFor(state *core.AuctionRunState, p Participant) AuctionView {
	return AuctionView{
		Item:    state.Item,
		Round:   state.Round,
		BestBid: state.CurrentBest(),
		Self:    p.Party,
	}
}

func (c *Coordinator) fetch(ctx context.Context, state *core.AuctionRunState, p Participant) turn {
	view := c.viewFor(state, p)
	action, err := decide(ctx, p.Provider, view, c.memories[p.ID], c.timeout)
	if err != nil {
		c.log.Warn().Err(err).Int("round", state.Round).Str("party", p.ID).Msg("decision provider degraded to pass")
	}
	return turn{action: action, view: view, degraded: err}
}

// fetchAll asks every participant concurrently against the best bid at round start.
// Commit order and validation stay sequential in RunRound. Each call runs to its
// own timeout even if the caller cancels, so the round is never cut short.
func (c *Coordinator) fetchAll(ctx context.Context, state *core.AuctionRunState) []turn {
	turns := make([]turn, len(c.participants))

	var g errgroup.Group
	for i, p := range c.participants {
		i, p := i, p // per-iteration copies (go.mod targets go 1.21 loop semantics)
		view := c.viewFor(state, p)
		g.Go(func() error {
			action, err := decide(ctx, p.Provider, view, c.memories[p.ID], c.timeout)
			turns[i] = turn{action: action, view: view, degraded: err}
			return nil
		})
	}
	_ = g.Wait() // decide never fails; errors are carried per turn

	for i, t := range turns {
		if t.degraded != nil {
			c.log.Warn().Err(t.degraded).Int("round", state.Round).Str("party", c.participants[i].ID).Msg("decision provider degraded to pass")
		}
	}
	return turns
}

func sameBest(a, b *core.BestBid) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
