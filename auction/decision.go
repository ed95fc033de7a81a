package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudx-io/openbidding/core"
)

// AuctionView is the read-only projection of the auction a party sees on its turn.
// It never carries other parties' budgets or memory.
type AuctionView struct {
	Item    core.AuctionItem
	Round   int
	BestBid *core.BestBid
	Self    core.Party
}

// HasBestBid reports whether a bid has been accepted so far.
func (v AuctionView) HasBestBid() bool {
	return v.BestBid != nil
}

// BestAmount returns the current best amount, or 0 when there is none.
func (v AuctionView) BestAmount() float64 {
	if v.BestBid == nil {
		return 0
	}
	return v.BestBid.Amount
}

// DecisionProvider chooses a party's action for one turn.
// Implementations may be slow or fail; failures are degraded to a pass.
type DecisionProvider interface {
	Decide(ctx context.Context, view AuctionView, memory *Memory) (core.Action, error)
}

// DecisionFunc adapts a function to DecisionProvider.
type DecisionFunc func(ctx context.Context, view AuctionView, memory *Memory) (core.Action, error)

// Decide calls f.
func (f DecisionFunc) Decide(ctx context.Context, view AuctionView, memory *Memory) (core.Action, error) {
	return f(ctx, view, memory)
}

// Participant binds a party to the provider that decides for it.
type Participant struct {
	core.Party
	Provider DecisionProvider
}

// Message roles accepted by Memory.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a party's private memory.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Memory is a party's private accumulated context. The core never interprets it.
// It is safe for concurrent use because a timed-out provider may still be writing to it.
type Memory struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// AddMessage appends a message. Role must be RoleUser or RoleAssistant.
func (m *Memory) AddMessage(role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("role must be %q or %q, got %q", RoleUser, RoleAssistant, role)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Role: role, Content: content})
	return nil
}

// AddTurn appends a user message followed by an assistant message.
func (m *Memory) AddTurn(user, assistant string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages,
		Message{Role: RoleUser, Content: user},
		Message{Role: RoleAssistant, Content: assistant},
	)
}

// Messages returns a copy of all messages.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// Len returns the number of messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Render formats the most recent maxMessages messages (all when maxMessages <= 0)
// as "User: ..." / "Assistant: ..." lines.
func (m *Memory) Render(maxMessages int) string {
	messages := m.Messages()
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		prefix := "User"
		if msg.Role == RoleAssistant {
			prefix = "Assistant"
		}
		lines = append(lines, prefix+": "+content)
	}

	if len(lines) == 0 {
		return "(no prior conversation)"
	}
	return strings.Join(lines, "\n")
}

// DegradedPrefix starts the rationale of every pass recorded for a failed provider call.
const DegradedPrefix = "degraded: "

var (
	errDecisionTimeout   = errors.New("decision timed out")
	errMalformedDecision = errors.New("malformed decision")
)

type decisionResult struct {
	action core.Action
	err    error
}

// decide runs one provider call bounded by timeout. Any failure (error, timeout,
// panic, malformed action) comes back as a degraded pass together with the cause.
//
// The call does not inherit cancellation from ctx: a cancelled caller stops the
// auction between rounds, so a round in progress still collects every decision.
func decide(ctx context.Context, provider DecisionProvider, view AuctionView, memory *Memory, timeout time.Duration) (core.Action, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	// Buffered so a provider that ignores ctx can still finish without blocking forever.
	results := make(chan decisionResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- decisionResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		action, err := provider.Decide(callCtx, view, memory)
		results <- decisionResult{action: action, err: err}
	}()

	var result decisionResult
	select {
	case result = <-results:
	case <-callCtx.Done():
		result = decisionResult{err: fmt.Errorf("%w after %s: %w", errDecisionTimeout, timeout, callCtx.Err())}
	}

	if result.err == nil {
		result.err = checkAction(result.action)
	}
	if result.err != nil {
		return core.Pass(DegradedPrefix + result.err.Error()), result.err
	}
	return result.action, nil
}

func checkAction(action core.Action) error {
	switch action.Kind {
	case core.ActionPass:
		return nil
	case core.ActionBid:
		if !core.ValidAmount(action.Amount) || action.Amount == 0 {
			return fmt.Errorf("%w: bid amount %v", errMalformedDecision, action.Amount)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown action kind %q", errMalformedDecision, action.Kind)
	}
}
