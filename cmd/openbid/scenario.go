package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/config"
	"github.com/cloudx-io/openbidding/core"
	"github.com/cloudx-io/openbidding/provider"
)

// Scenario is the JSON input of "openbid run".
type Scenario struct {
	Item    core.AuctionItem `json:"item"`
	Parties []PartySpec      `json:"parties"`
}

// PartySpec declares one party and the strategy that decides for it.
type PartySpec struct {
	ID       string       `json:"id"`
	Budget   float64      `json:"budget"`
	Strategy string       `json:"strategy"`
	Amount   float64      `json:"amount,omitempty"`
	Start    float64      `json:"start,omitempty"`
	Step     float64      `json:"step,omitempty"`
	Actions  []ActionSpec `json:"actions,omitempty"`
}

// ActionSpec is one entry of a scripted strategy.
type ActionSpec struct {
	Kind      core.ActionKind `json:"kind"`
	Amount    float64         `json:"amount,omitempty"`
	Rationale string          `json:"rationale,omitempty"`
}

const (
	strategyPass      = "pass"
	strategyBidOnce   = "bid_once"
	strategyFixed     = "fixed"
	strategyIncrement = "increment"
	strategyScripted  = "scripted"
	strategyLLM       = "llm"
)

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var scenario Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	return &scenario, nil
}

// participants binds every party to its provider. Budgets and IDs are checked
// by the controller; only strategy parameters are checked here.
func (s *Scenario) participants(llm config.LLMSettings) ([]auction.Participant, error) {
	participants := make([]auction.Participant, 0, len(s.Parties))
	var completer provider.Completer

	for _, spec := range s.Parties {
		var p auction.DecisionProvider
		switch strings.ToLower(strings.TrimSpace(spec.Strategy)) {
		case strategyPass, "":
			p = provider.AlwaysPass{}
		case strategyBidOnce:
			p = provider.BidOnce(spec.Amount)
		case strategyFixed:
			p = provider.Fixed{Amount: spec.Amount}
		case strategyIncrement:
			if spec.Step <= 0 {
				return nil, fmt.Errorf("party %q: increment strategy needs a positive step", spec.ID)
			}
			p = provider.Incrementer{Start: spec.Start, Step: spec.Step}
		case strategyScripted:
			actions := make([]core.Action, len(spec.Actions))
			for i, a := range spec.Actions {
				actions[i] = core.Action{Kind: a.Kind, Amount: a.Amount, Rationale: a.Rationale}
			}
			p = provider.NewScripted(actions...)
		case strategyLLM:
			if strings.TrimSpace(llm.APIKey) == "" {
				return nil, fmt.Errorf("party %q: llm strategy needs OPENBID_LLM_API_KEY", spec.ID)
			}
			if completer == nil {
				completer = llm.Completer()
			}
			p = provider.NewTextProvider(completer)
		default:
			return nil, fmt.Errorf("party %q: unknown strategy %q", spec.ID, spec.Strategy)
		}

		participants = append(participants, auction.Participant{
			Party:    core.Party{ID: spec.ID, Budget: spec.Budget},
			Provider: p,
		})
	}
	return participants, nil
}
