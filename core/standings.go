package core

import "sort"

// Standings ranks parties by their highest accepted bid.
type Standings struct {
	Ranks         map[string]int      `json:"ranks"`
	HighestBids   map[string]*BestBid `json:"highest_bids"`
	SortedParties []string            `json:"sorted_parties"`
}

// RankParties ranks the parties that placed at least one accepted bid.
// Parties that only passed or were rejected are not ranked.
//
// Accepted bids are strictly increasing, so two parties can never share a
// highest amount; order of first accepted bid is kept as a stable fallback.
func RankParties(events []RoundEvent) *Standings {
	highest := make(map[string]*BestBid)
	order := make([]string, 0)

	for _, event := range events {
		if event.Action != EventBid || event.Amount == nil {
			continue
		}

		existing, seen := highest[event.PartyID]
		if !seen {
			order = append(order, event.PartyID)
		}
		if !seen || BidExceedsBest(*event.Amount, existing.Amount) {
			highest[event.PartyID] = &BestBid{PartyID: event.PartyID, Amount: *event.Amount}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return highest[order[i]].Amount > highest[order[j]].Amount
	})

	result := &Standings{
		Ranks:         make(map[string]int, len(order)),
		HighestBids:   highest,
		SortedParties: order,
	}
	for rank, partyID := range order {
		result.Ranks[partyID] = rank + 1
	}

	return result
}

// Winner returns the top-ranked bid, or nil.
func (s *Standings) Winner() *BestBid {
	if len(s.SortedParties) == 0 {
		return nil
	}
	return s.HighestBids[s.SortedParties[0]]
}

// RunnerUp returns the second-ranked bid, or nil.
func (s *Standings) RunnerUp() *BestBid {
	if len(s.SortedParties) < 2 {
		return nil
	}
	return s.HighestBids[s.SortedParties[1]]
}
