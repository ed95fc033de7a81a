package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/auctionapi"
	"github.com/cloudx-io/openbidding/core"
	"github.com/cloudx-io/openbidding/validation"
)

func printResult(out io.Writer, result *auction.Result, transcript *auctionapi.Transcript) {
	fmt.Fprintln(out, "Auction Result")
	fmt.Fprintln(out, "==============")
	fmt.Fprintf(out, "Run ID:        %s\n", result.RunID)
	fmt.Fprintf(out, "Item:          %s\n", transcript.Item.ID)
	fmt.Fprintf(out, "Rounds played: %d\n", result.RoundsPlayed)
	fmt.Fprintf(out, "Closed by:     %s\n", result.Reason)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Ledger:")
	for _, event := range result.Ledger {
		fmt.Fprintf(out, "  %s\n", formatEvent(event))
	}
	fmt.Fprintln(out)

	if result.Outcome.NoSale() {
		fmt.Fprintln(out, "Outcome: no sale")
	} else {
		fmt.Fprintf(out, "Outcome: %s wins at %.2f\n", result.Outcome.Winner.PartyID, result.Outcome.Winner.Amount)
	}
	if transcript.RunnerUp != nil {
		fmt.Fprintf(out, "Runner-up: %s at %.2f\n", transcript.RunnerUp.PartyID, transcript.RunnerUp.Amount)
	}
	fmt.Fprintf(out, "Ledger hash: %s\n", transcript.LedgerHash)
}

func formatEvent(event core.RoundEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "round %d  %-12s %-8s", event.Round, event.PartyID, event.Action)
	if event.Amount != nil {
		fmt.Fprintf(&b, " %.2f", *event.Amount)
	}
	if event.RejectionReason != "" {
		fmt.Fprintf(&b, " (%s)", event.RejectionReason)
	}
	if event.Rationale != "" {
		fmt.Fprintf(&b, "  %q", firstLine(event.Rationale))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// validationReport is the printable form of a transcript audit.
type validationReport struct {
	Valid           bool     `json:"valid"`
	TranscriptID    string   `json:"transcript_id"`
	SignatureValid  *bool    `json:"signature_valid,omitempty"`
	RoundsValid     bool     `json:"rounds_valid"`
	BudgetsValid    bool     `json:"budgets_valid"`
	IncreasingValid bool     `json:"increasing_valid"`
	RejectionsValid bool     `json:"rejections_valid"`
	OutcomeValid    bool     `json:"outcome_valid"`
	LedgerHashValid bool     `json:"ledger_hash_valid"`
	Details         []string `json:"details"`
}

func unsignedReport(result *validation.TranscriptValidationResult, transcript *auctionapi.Transcript) validationReport {
	return validationReport{
		Valid:           result.IsValid(),
		TranscriptID:    transcript.ID,
		RoundsValid:     result.RoundsValid,
		BudgetsValid:    result.BudgetsValid,
		IncreasingValid: result.IncreasingValid,
		RejectionsValid: result.RejectionsValid,
		OutcomeValid:    result.OutcomeValid,
		LedgerHashValid: result.LedgerHashValid,
		Details:         result.ValidationDetails,
	}
}

func signedReport(result *validation.SignedTranscriptValidationResult, transcript *auctionapi.Transcript) validationReport {
	report := unsignedReport(&result.TranscriptValidationResult, transcript)
	signatureValid := result.SignatureValid
	report.SignatureValid = &signatureValid
	report.Valid = result.IsValid()
	return report
}

func (r validationReport) writeText(out io.Writer) {
	fmt.Fprintln(out, "Auction Transcript Validator")
	fmt.Fprintln(out, "============================")
	fmt.Fprintf(out, "Transcript: %s\n", r.TranscriptID)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Summary:")
	if r.SignatureValid != nil {
		fmt.Fprintf(out, "  Signature Valid:         %v\n", *r.SignatureValid)
	}
	fmt.Fprintf(out, "  Rounds Valid:            %v\n", r.RoundsValid)
	fmt.Fprintf(out, "  Budgets Valid:           %v\n", r.BudgetsValid)
	fmt.Fprintf(out, "  Increasing Valid:        %v\n", r.IncreasingValid)
	fmt.Fprintf(out, "  Rejections Valid:        %v\n", r.RejectionsValid)
	fmt.Fprintf(out, "  Outcome Valid:           %v\n", r.OutcomeValid)
	fmt.Fprintf(out, "  Ledger Hash Valid:       %v\n", r.LedgerHashValid)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Details:")
	for _, detail := range r.Details {
		fmt.Fprintf(out, "  - %s\n", detail)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "============================")
	if r.Valid {
		fmt.Fprintln(out, "VALIDATION: ✓ PASSED")
	} else {
		fmt.Fprintln(out, "VALIDATION: ✗ FAILED")
	}
}

func (r validationReport) writeJSON(out io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
