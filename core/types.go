package core

import "time"

// AuctionItem is the thing being auctioned. It is immutable once an auction starts.
type AuctionItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Party is a bidding participant with an inclusive budget ceiling.
type Party struct {
	ID     string  `json:"id"`
	Budget float64 `json:"budget"`
}

// ActionKind tags what a party decided to do on its turn.
type ActionKind string

const (
	ActionPass ActionKind = "pass"
	ActionBid  ActionKind = "bid"
)

// Action is the structured decision a party returns for one turn.
// Amount is only meaningful when Kind is ActionBid.
type Action struct {
	Kind      ActionKind
	Amount    float64
	Rationale string
}

// Pass builds a pass action.
func Pass(rationale string) Action {
	return Action{Kind: ActionPass, Rationale: rationale}
}

// Bid builds a bid action.
func Bid(amount float64, rationale string) Action {
	return Action{Kind: ActionBid, Amount: amount, Rationale: rationale}
}

// IsBid reports whether the action is a bid.
func (a Action) IsBid() bool {
	return a.Kind == ActionBid
}

// EventAction is the ledger classification of a party turn.
type EventAction string

const (
	EventBid      EventAction = "BID"
	EventPass     EventAction = "PASS"
	EventRejected EventAction = "REJECTED"
)

// RoundEvent is an immutable record of one party turn.
//
// Amount is set iff Action is EventBid or EventRejected.
// RejectionReason is set iff Action is EventRejected.
type RoundEvent struct {
	Round           int         `json:"round"`
	PartyID         string      `json:"party_id"`
	Action          EventAction `json:"action"`
	Amount          *float64    `json:"amount,omitempty"`
	Rationale       string      `json:"rationale"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
}

// AmountValue returns the event amount or 0 when absent.
func (e RoundEvent) AmountValue() float64 {
	if e.Amount == nil {
		return 0
	}
	return *e.Amount
}

// BestBid is the running best offer: an amount and the party holding it.
type BestBid struct {
	PartyID string  `json:"party_id"`
	Amount  float64 `json:"amount"`
}

// Phase is the lifecycle phase of an auction run. It only moves forward.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseClosed     Phase = "closed"
)

// Outcome is the terminal result of an auction: a winner, or no sale when Winner is nil.
type Outcome struct {
	Winner *BestBid `json:"winner,omitempty"`
}

// NoSale reports whether the auction closed without an accepted bid.
func (o Outcome) NoSale() bool {
	return o.Winner == nil
}

// AuctionRunState is the mutable state of a single auction run.
// The best bid is derived from the ledger, so it can never disagree with it.
type AuctionRunState struct {
	ID        string
	Item      AuctionItem
	Round     int
	Phase     Phase
	Ledger    *Ledger
	StartedAt time.Time
	ClosedAt  time.Time
}

// NewAuctionRunState returns a fresh run state with an empty ledger.
func NewAuctionRunState(id string, item AuctionItem) *AuctionRunState {
	return &AuctionRunState{
		ID:     id,
		Item:   item,
		Phase:  PhaseNotStarted,
		Ledger: NewLedger(),
	}
}

// CurrentBest returns a copy of the running best bid, or nil.
func (s *AuctionRunState) CurrentBest() *BestBid {
	return s.Ledger.CurrentBest()
}

// Outcome derives the auction outcome from the ledger.
func (s *AuctionRunState) Outcome() Outcome {
	return Outcome{Winner: s.Ledger.CurrentBest()}
}
