package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/core"
)

const (
	// DefaultMemoryWindow is how many memory messages go into each prompt.
	DefaultMemoryWindow = 8
	// DefaultCurrency labels amounts in prompts.
	DefaultCurrency = "EUR"

	maxRationaleLen = 500
)

// Completer turns a prompt into free-form text, typically a language model call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var promptTemplate = template.Must(template.New("prompt").Parse(`You are bidding in a round-based auction.

Here is the history of the conversation:
{{.History}}

Here is the current situation:
{{.Question}}

Reply with PASS, or with BID followed by a single amount.
`))

var situationTemplate = template.Must(template.New("situation").Parse(
	`You are {{.Name}}. Your budget is {{printf "%.0f" .Budget}} {{.Currency}}.
Item ID: {{.ItemID}}.
{{- if .Description}}
Item description:
{{.Description}}
{{- end}}
{{if .HasBest}}The current highest bid is {{printf "%.0f" .BestAmount}} {{.Currency}} from {{.BestParty}}.{{else}}There is currently no active bid.{{end}}
Decide whether you want to PASS or place a BID within your budget.`))

// TextProvider asks a Completer for a decision and parses the reply.
// The question and the reply are appended to the party's memory.
type TextProvider struct {
	completer    Completer
	memoryWindow int
	currency     string
}

// Option configures a TextProvider.
type Option func(*TextProvider)

// WithMemoryWindow sets how many memory messages are included in the prompt.
func WithMemoryWindow(n int) Option {
	return func(p *TextProvider) { p.memoryWindow = n }
}

// WithCurrency sets the currency label used in prompts.
func WithCurrency(currency string) Option {
	return func(p *TextProvider) { p.currency = currency }
}

// NewTextProvider returns a TextProvider backed by completer.
func NewTextProvider(completer Completer, opts ...Option) *TextProvider {
	p := &TextProvider{
		completer:    completer,
		memoryWindow: DefaultMemoryWindow,
		currency:     DefaultCurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide implements auction.DecisionProvider.
func (p *TextProvider) Decide(ctx context.Context, view auction.AuctionView, memory *auction.Memory) (core.Action, error) {
	question, err := p.Question(view)
	if err != nil {
		return core.Action{}, err
	}

	var history string
	if memory != nil {
		history = memory.Render(p.memoryWindow)
	} else {
		history = auction.NewMemory().Render(p.memoryWindow)
	}

	var prompt strings.Builder
	if err := promptTemplate.Execute(&prompt, struct{ History, Question string }{history, question}); err != nil {
		return core.Action{}, fmt.Errorf("render prompt: %w", err)
	}

	reply, err := p.completer.Complete(ctx, prompt.String())
	if err != nil {
		return core.Action{}, fmt.Errorf("complete prompt: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if err := ctx.Err(); err != nil {
		// The turn was already recorded as a degraded pass; keep memory consistent with it.
		return core.Action{}, fmt.Errorf("complete prompt: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("party", view.Self.ID).
		Int("reply_len", len(reply)).
		Msg("text provider reply")

	if memory != nil {
		memory.AddTurn(question, reply)
	}

	return ParseTextDecision(reply, view.Self.Budget), nil
}

// Question describes the party's situation in plain text.
func (p *TextProvider) Question(view auction.AuctionView) (string, error) {
	data := struct {
		Name, Currency, ItemID, Description, BestParty string
		Budget, BestAmount                             float64
		HasBest                                        bool
	}{
		Name:        view.Self.ID,
		Currency:    p.currency,
		ItemID:      view.Item.ID,
		Description: strings.TrimSpace(view.Item.Description),
		Budget:      view.Self.Budget,
		HasBest:     view.HasBestBid(),
		BestAmount:  view.BestAmount(),
	}
	if view.BestBid != nil {
		data.BestParty = view.BestBid.PartyID
	}
	if data.ItemID == "" {
		data.ItemID = "unknown item"
	}

	var b strings.Builder
	if err := situationTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render situation: %w", err)
	}
	return b.String(), nil
}

var amountPattern = regexp.MustCompile(`(\d[\d\.,]*)`)

// ParseTextDecision reads an action out of a free-form reply.
//
// A reply containing "BID" (any case) bids the first number in it, with "."
// and "," read as grouping separators, when that number is within budget.
// Anything else is a pass. The reply, truncated, becomes the rationale.
func ParseTextDecision(reply string, budget float64) core.Action {
	rationale := truncateRationale(reply)

	if !strings.Contains(strings.ToUpper(reply), "BID") {
		return core.Pass(rationale)
	}

	token := amountPattern.FindString(reply)
	if token == "" {
		return core.Pass(rationale)
	}

	digits := strings.NewReplacer(".", "", ",", "").Replace(token)
	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil || amount <= 0 || !core.BidWithinBudget(amount, budget) {
		return core.Pass(rationale)
	}
	return core.Bid(amount, rationale)
}

func truncateRationale(text string) string {
	runes := []rune(text)
	if len(runes) < maxRationaleLen {
		return text
	}
	return string(runes[:maxRationaleLen]) + " ..."
}
