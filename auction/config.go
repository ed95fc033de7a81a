package auction

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudx-io/openbidding/core"
)

const (
	// DefaultMaxRounds force-closes an auction even while bidding is active.
	DefaultMaxRounds = 10
	// DefaultDecisionTimeout bounds a single provider call.
	DefaultDecisionTimeout = 30 * time.Second
)

// Decision is what a closing policy returns after each round.
type Decision int

const (
	Continue Decision = iota
	Close
)

func (d Decision) String() string {
	if d == Close {
		return "close"
	}
	return "continue"
}

// StateSnapshot is the read-only view of a run handed to a closing policy.
type StateSnapshot struct {
	ID      string
	Round   int
	Phase   core.Phase
	BestBid *core.BestBid
}

// ClosingPolicy decides after every round whether another round should run.
// The max-rounds limit is enforced by the controller independently of the policy.
type ClosingPolicy func(summary RoundSummary, state StateSnapshot) Decision

// DefaultClosingPolicy closes as soon as a round produced no accepted bid.
// A party that passed may still bid in a later round while others keep bidding.
func DefaultClosingPolicy(summary RoundSummary, _ StateSnapshot) Decision {
	if summary.AnyBid() {
		return Continue
	}
	return Close
}

// Config controls a controller. Zero values fall back to defaults.
type Config struct {
	// MaxRounds force-closes the auction once this many rounds were played.
	MaxRounds int
	// DecisionTimeout bounds each provider call; a timeout becomes a pass.
	DecisionTimeout time.Duration
	// ClosingPolicy decides continuation after each round.
	ClosingPolicy ClosingPolicy
	// ParallelFetch fetches all decisions of a round concurrently and commits them in party order.
	ParallelFetch bool
	// Logger receives lifecycle and round logs.
	Logger *zerolog.Logger
}

func (c Config) validate() error {
	if c.MaxRounds < 0 {
		return core.InvalidInputf("max rounds must not be negative, got %d", c.MaxRounds)
	}
	if c.DecisionTimeout < 0 {
		return core.InvalidInputf("decision timeout must not be negative, got %s", c.DecisionTimeout)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxRounds == 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.DecisionTimeout == 0 {
		c.DecisionTimeout = DefaultDecisionTimeout
	}
	if c.ClosingPolicy == nil {
		c.ClosingPolicy = DefaultClosingPolicy
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}
