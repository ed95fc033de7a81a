package core

import "fmt"

// Ledger is the append-only record of every party turn in an auction.
// It keeps the running best bid alongside the log so CurrentBest is O(1).
//
// A Ledger is not safe for concurrent use. It is owned by a single
// coordinator for the duration of a run.
type Ledger struct {
	events    []RoundEvent
	byRound   map[int][]int
	best      *BestBid
	lastRound int
	frozen    bool
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		events:  make([]RoundEvent, 0),
		byRound: make(map[int][]int),
	}
}

// Append records an event. It only fails on a malformed or out-of-order event,
// which is an invariant violation rather than an auction condition.
func (l *Ledger) Append(event RoundEvent) error {
	if l.frozen {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, ErrLedgerFrozen)
	}
	if err := checkEvent(event); err != nil {
		return err
	}
	if event.Round < l.lastRound {
		return invariantf("ledger.append", "round %d appended after round %d", event.Round, l.lastRound)
	}
	if event.Round > l.lastRound+1 {
		return invariantf("ledger.append", "round %d skips round %d", event.Round, l.lastRound+1)
	}

	if event.Action == EventBid {
		amount := *event.Amount
		if l.best != nil && !BidExceedsBest(amount, l.best.Amount) {
			return invariantf("ledger.append", "accepted bid %.4f from %s does not exceed best %.4f", amount, event.PartyID, l.best.Amount)
		}
		l.best = &BestBid{PartyID: event.PartyID, Amount: amount}
	}

	l.events = append(l.events, cloneEvent(event))
	l.byRound[event.Round] = append(l.byRound[event.Round], len(l.events)-1)
	l.lastRound = event.Round
	return nil
}

func checkEvent(event RoundEvent) error {
	if event.Round < 1 {
		return invariantf("ledger.append", "round must be positive, got %d", event.Round)
	}
	if event.PartyID == "" {
		return invariantf("ledger.append", "event in round %d has no party", event.Round)
	}

	switch event.Action {
	case EventPass:
		if event.Amount != nil {
			return invariantf("ledger.append", "PASS from %s carries an amount", event.PartyID)
		}
		if event.RejectionReason != "" {
			return invariantf("ledger.append", "PASS from %s carries a rejection reason", event.PartyID)
		}
	case EventBid:
		if event.Amount == nil {
			return invariantf("ledger.append", "BID from %s has no amount", event.PartyID)
		}
		if event.RejectionReason != "" {
			return invariantf("ledger.append", "BID from %s carries a rejection reason", event.PartyID)
		}
	case EventRejected:
		if event.Amount == nil {
			return invariantf("ledger.append", "REJECTED from %s has no amount", event.PartyID)
		}
		if event.RejectionReason == "" {
			return invariantf("ledger.append", "REJECTED from %s has no reason", event.PartyID)
		}
	default:
		return invariantf("ledger.append", "unknown action %q from %s", event.Action, event.PartyID)
	}

	if event.Amount != nil && !ValidAmount(*event.Amount) {
		return invariantf("ledger.append", "invalid amount %v from %s", *event.Amount, event.PartyID)
	}
	return nil
}

// cloneEvent copies the amount so callers cannot mutate a recorded event.
func cloneEvent(event RoundEvent) RoundEvent {
	if event.Amount != nil {
		amount := *event.Amount
		event.Amount = &amount
	}
	return event
}

// EventsForRound returns the events of round n in append order.
func (l *Ledger) EventsForRound(n int) []RoundEvent {
	positions := l.byRound[n]
	result := make([]RoundEvent, len(positions))
	for i, pos := range positions {
		result[i] = cloneEvent(l.events[pos])
	}
	return result
}

// Events returns a copy of the full event history.
func (l *Ledger) Events() []RoundEvent {
	result := make([]RoundEvent, len(l.events))
	for i, event := range l.events {
		result[i] = cloneEvent(event)
	}
	return result
}

// Len returns the number of recorded events.
func (l *Ledger) Len() int {
	return len(l.events)
}

// LastRound returns the highest round recorded so far, or 0.
func (l *Ledger) LastRound() int {
	return l.lastRound
}

// CurrentBest returns a copy of the running best bid, or nil if none was accepted.
func (l *Ledger) CurrentBest() *BestBid {
	if l.best == nil {
		return nil
	}
	best := *l.best
	return &best
}

// Freeze rejects all further appends.
func (l *Ledger) Freeze() {
	l.frozen = true
}

// Frozen reports whether the ledger has been frozen.
func (l *Ledger) Frozen() bool {
	return l.frozen
}
