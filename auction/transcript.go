package auction

import (
	"errors"
	"fmt"

	"github.com/cloudx-io/openbidding/auctionapi"
)

// ErrNoTranscript is returned when a transcript is requested before the auction closed.
var ErrNoTranscript = errors.New("no transcript: auction not closed")

// Transcript seals the closed auction into an auditable transcript.
func (c *Controller) Transcript() (*auctionapi.Transcript, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return nil, ErrNoTranscript
	}
	if c.result == nil {
		return nil, fmt.Errorf("%w: auction %s is %s", ErrNoTranscript, c.state.ID, c.state.Phase)
	}

	return auctionapi.NewTranscript(c.state, c.parties, string(c.result.Reason))
}
