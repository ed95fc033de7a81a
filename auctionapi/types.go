package auctionapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/openbidding/core"
)

// TranscriptVersion is bumped whenever the transcript layout changes.
const TranscriptVersion = 1

// Transcript is the auditable record of a closed auction.
// It is what gets archived, signed and validated.
type Transcript struct {
	Version      int               `json:"version"`
	ID           string            `json:"id"`
	Item         core.AuctionItem  `json:"item"`
	Parties      []core.Party      `json:"parties"`
	Events       []core.RoundEvent `json:"events"`
	Outcome      core.Outcome      `json:"outcome"`
	RunnerUp     *core.BestBid     `json:"runner_up,omitempty"`
	RoundsPlayed int               `json:"rounds_played"`
	CloseReason  string            `json:"close_reason"`
	LedgerHash   string            `json:"ledger_hash"`
	StartedAt    time.Time         `json:"started_at"`
	ClosedAt     time.Time         `json:"closed_at"`
}

// NewTranscript seals a closed run state into a transcript. Parties are listed in turn order.
func NewTranscript(state *core.AuctionRunState, parties []core.Party, closeReason string) (*Transcript, error) {
	if state == nil {
		return nil, fmt.Errorf("run state is nil")
	}
	if state.Phase != core.PhaseClosed {
		return nil, fmt.Errorf("auction %s is %s, not closed", state.ID, state.Phase)
	}

	events := state.Ledger.Events()
	standings := core.RankParties(events)

	partyCopy := make([]core.Party, len(parties))
	copy(partyCopy, parties)

	return &Transcript{
		Version:      TranscriptVersion,
		ID:           state.ID,
		Item:         state.Item,
		Parties:      partyCopy,
		Events:       events,
		Outcome:      state.Outcome(),
		RunnerUp:     standings.RunnerUp(),
		RoundsPlayed: state.Round,
		CloseReason:  closeReason,
		LedgerHash:   core.ComputeLedgerHash(events),
		StartedAt:    state.StartedAt,
		ClosedAt:     state.ClosedAt,
	}, nil
}

// Party looks up a party by ID.
func (t *Transcript) Party(id string) (core.Party, bool) {
	for _, p := range t.Parties {
		if p.ID == id {
			return p, true
		}
	}
	return core.Party{}, false
}

var transcriptEncMode = mustTranscriptEncMode()

func mustTranscriptEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("transcript cbor options: %v", err))
	}
	return mode
}

// EncodeCBOR returns the canonical CBOR encoding of the transcript.
// Canonical encoding keeps the bytes stable for signing.
func (t *Transcript) EncodeCBOR() ([]byte, error) {
	data, err := transcriptEncMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

// DecodeTranscriptCBOR parses a CBOR-encoded transcript.
func DecodeTranscriptCBOR(data []byte) (*Transcript, error) {
	var t Transcript
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &t, nil
}

// EncodeJSON returns the indented JSON encoding of the transcript.
func (t *Transcript) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript json: %w", err)
	}
	return data, nil
}

// DecodeTranscriptJSON parses a JSON-encoded transcript.
func DecodeTranscriptJSON(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript json: %w", err)
	}
	return &t, nil
}
