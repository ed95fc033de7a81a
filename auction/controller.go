package auction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cloudx-io/openbidding/core"
)

// CloseReason records why an auction closed.
type CloseReason string

const (
	CloseByPolicy    CloseReason = "policy"
	CloseByMaxRounds CloseReason = "max_rounds"
	CloseByCancel    CloseReason = "cancelled"
)

// Result is the terminal artifact of an auction run.
type Result struct {
	RunID        string
	Outcome      core.Outcome
	Ledger       []core.RoundEvent
	RoundsPlayed int
	Reason       CloseReason
}

// Step is what Advance returns: the round that ran (if any) and, once the
// auction is closed, its result.
type Step struct {
	Summary *RoundSummary
	Result  *Result
}

// Closed reports whether the auction is closed after this step.
func (s Step) Closed() bool {
	return s.Result != nil
}

// Controller owns the lifecycle of exactly one auction:
// not_started -> in_progress -> closed. A closed controller cannot be restarted;
// use a fresh Controller per auction.
type Controller struct {
	mu sync.Mutex

	cfg         Config
	log         zerolog.Logger
	state       *core.AuctionRunState
	parties     []core.Party
	coordinator *Coordinator
	result      *Result
	failure     error

	cancelRequested atomic.Bool
}

// NewController returns a controller in the not_started phase.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Controller{
		cfg: cfg,
		log: *cfg.Logger,
	}, nil
}

// Start initialises the run for item with participants in turn order.
// It fails with core.ErrInvalidInput on an empty list, a duplicate or empty ID,
// a non-positive budget or a missing provider, and with core.ErrAlreadyStarted
// if the controller was started before.
func (c *Controller) Start(item core.AuctionItem, participants []Participant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != nil {
		return fmt.Errorf("start auction %s: %w", item.ID, core.ErrAlreadyStarted)
	}
	if err := validateParticipants(participants); err != nil {
		return fmt.Errorf("start auction %s: %w", item.ID, err)
	}

	state := core.NewAuctionRunState(uuid.NewString(), item)
	state.Phase = core.PhaseInProgress
	state.StartedAt = time.Now().UTC()

	parties := make([]core.Party, len(participants))
	for i, p := range participants {
		parties[i] = p.Party
	}

	c.state = state
	c.parties = parties
	c.coordinator = NewCoordinator(participants, c.cfg)
	c.log = c.log.With().Str("run_id", state.ID).Str("item_id", item.ID).Logger()

	c.log.Info().
		Int("parties", len(participants)).
		Int("max_rounds", c.cfg.MaxRounds).
		Dur("decision_timeout", c.cfg.DecisionTimeout).
		Bool("parallel_fetch", c.cfg.ParallelFetch).
		Msg("auction started")
	return nil
}

func validateParticipants(participants []Participant) error {
	if len(participants) == 0 {
		return core.InvalidInputf("at least one party is required")
	}

	seen := make(map[string]bool, len(participants))
	for i, p := range participants {
		if p.ID == "" {
			return core.InvalidInputf("party %d has an empty id", i)
		}
		if seen[p.ID] {
			return core.InvalidInputf("duplicate party id %q", p.ID)
		}
		seen[p.ID] = true

		if math.IsNaN(p.Budget) || math.IsInf(p.Budget, 0) || p.Budget <= 0 {
			return core.InvalidInputf("party %q has non-positive budget %v", p.ID, p.Budget)
		}
		if p.Provider == nil {
			return core.InvalidInputf("party %q has no decision provider", p.ID)
		}
	}
	return nil
}

// Advance runs one round and applies the closing rules. On a closed auction it
// returns the existing result without running anything. A cancellation request
// or a done ctx is honoured before the round starts, never in the middle of one.
func (c *Controller) Advance(ctx context.Context) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return Step{}, core.ErrNotStarted
	}
	if c.result != nil {
		return Step{Result: c.result}, nil
	}
	if c.failure != nil {
		return Step{}, c.failure
	}

	if c.cancelRequested.Load() || ctx.Err() != nil {
		return Step{Result: c.closeLocked(CloseByCancel)}, nil
	}

	summary, err := c.coordinator.RunRound(ctx, c.state)
	if err != nil {
		c.log.Error().Err(err).Int("round", c.state.Round).Msg("auction aborted")
		c.failure = fmt.Errorf("run round: %w", err)
		return Step{}, c.failure
	}

	event := c.log.Info().
		Int("round", summary.Round).
		Int("accepted", summary.AcceptedBids).
		Int("rejected", summary.Rejected).
		Int("degraded", summary.Degraded)
	if summary.BestBid != nil {
		event = event.Str("best_party", summary.BestBid.PartyID).Float64("best_amount", summary.BestBid.Amount)
	}
	event.Msg("round complete")

	step := Step{Summary: &summary}

	switch {
	case c.state.Round >= c.cfg.MaxRounds:
		step.Result = c.closeLocked(CloseByMaxRounds)
	case c.cfg.ClosingPolicy(summary, c.snapshotLocked()) == Close:
		step.Result = c.closeLocked(CloseByPolicy)
	}
	return step, nil
}

// Run drives rounds until the auction closes.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	for {
		step, err := c.Advance(ctx)
		if err != nil {
			return nil, err
		}
		if step.Closed() {
			return step.Result, nil
		}
	}
}

// Cancel stops further bidding. A round in progress finishes first. Accepted
// bids stand: the outcome is the existing best bid, or no sale.
// Cancel on a controller that was never started does nothing.
func (c *Controller) Cancel() {
	if !c.mu.TryLock() {
		// A round is running; Advance will close before the next one.
		c.cancelRequested.Store(true)
		return
	}
	defer c.mu.Unlock()
	if c.state == nil {
		return
	}
	c.cancelRequested.Store(true)
	if c.result == nil && c.failure == nil {
		c.closeLocked(CloseByCancel)
	}
}

func (c *Controller) closeLocked(reason CloseReason) *Result {
	c.state.Phase = core.PhaseClosed
	c.state.ClosedAt = time.Now().UTC()
	c.state.Ledger.Freeze()

	outcome := c.state.Outcome()
	c.result = &Result{
		RunID:        c.state.ID,
		Outcome:      outcome,
		Ledger:       c.state.Ledger.Events(),
		RoundsPlayed: c.state.Round,
		Reason:       reason,
	}

	event := c.log.Info().Int("rounds", c.state.Round).Str("reason", string(reason))
	if outcome.NoSale() {
		event.Msg("auction closed with no sale")
	} else {
		event.Str("winner", outcome.Winner.PartyID).Float64("amount", outcome.Winner.Amount).Msg("auction closed with winner")
	}
	return c.result
}

func (c *Controller) snapshotLocked() StateSnapshot {
	return StateSnapshot{
		ID:      c.state.ID,
		Round:   c.state.Round,
		Phase:   c.state.Phase,
		BestBid: c.state.CurrentBest(),
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() core.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return core.PhaseNotStarted
	}
	return c.state.Phase
}

// Snapshot returns a read-only view of the run, or false before Start.
func (c *Controller) Snapshot() (StateSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return StateSnapshot{}, false
	}
	return c.snapshotLocked(), true
}

// State hands out the run state once the auction is closed. It returns nil
// before Start and while the auction is still in progress.
func (c *Controller) State() *core.AuctionRunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil || c.state.Phase != core.PhaseClosed {
		return nil
	}
	return c.state
}

// Parties returns the parties in turn order.
func (c *Controller) Parties() []core.Party {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]core.Party, len(c.parties))
	copy(result, c.parties)
	return result
}

// Memory returns a party's private memory, or nil before Start or for an unknown party.
func (c *Controller) Memory(partyID string) *Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.coordinator == nil {
		return nil
	}
	return c.coordinator.Memory(partyID)
}

// IsInvariantViolation reports whether err aborted a run because of an internal defect.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, core.ErrInvariantViolation)
}
