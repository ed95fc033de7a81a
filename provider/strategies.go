// Package provider contains ready-made decision providers: rule-based bidding
// strategies and a text adapter that turns a free-form completion into an action.
package provider

import (
	"context"
	"sync"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/core"
)

// AlwaysPass never bids.
type AlwaysPass struct{}

// Decide implements auction.DecisionProvider.
func (AlwaysPass) Decide(context.Context, auction.AuctionView, *auction.Memory) (core.Action, error) {
	return core.Pass("not interested"), nil
}

// Fixed bids the same amount every round.
type Fixed struct {
	Amount float64
}

// Decide implements auction.DecisionProvider.
func (f Fixed) Decide(context.Context, auction.AuctionView, *auction.Memory) (core.Action, error) {
	return core.Bid(f.Amount, "fixed offer"), nil
}

// Incrementer opens at Start and then outbids the current best by Step.
// It leaves budget enforcement to the validator.
type Incrementer struct {
	Start float64
	Step  float64
}

// Decide implements auction.DecisionProvider.
func (i Incrementer) Decide(_ context.Context, view auction.AuctionView, _ *auction.Memory) (core.Action, error) {
	if !view.HasBestBid() {
		return core.Bid(i.Start, "opening bid"), nil
	}
	return core.Bid(core.AddAmounts(view.BestAmount(), i.Step), "raise by step"), nil
}

// Scripted plays a fixed sequence of actions, one per call, then passes.
type Scripted struct {
	mu      sync.Mutex
	actions []core.Action
	next    int
}

// NewScripted returns a provider that plays actions in order.
func NewScripted(actions ...core.Action) *Scripted {
	return &Scripted{actions: actions}
}

// BidOnce bids amount on its first turn and passes afterwards.
func BidOnce(amount float64) *Scripted {
	return NewScripted(core.Bid(amount, "single offer"))
}

// Decide implements auction.DecisionProvider.
func (s *Scripted) Decide(context.Context, auction.AuctionView, *auction.Memory) (core.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.actions) {
		return core.Pass("script exhausted"), nil
	}
	action := s.actions[s.next]
	s.next++
	return action, nil
}
