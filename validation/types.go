package validation

// TranscriptValidationResult contains the results of auditing an auction transcript.
// Each check is independent; ValidationDetails explains every pass and failure.
type TranscriptValidationResult struct {
	RoundsValid       bool
	BudgetsValid      bool
	IncreasingValid   bool
	RejectionsValid   bool
	OutcomeValid      bool
	LedgerHashValid   bool
	ValidationDetails []string
}

// IsValid returns true if all transcript checks passed
func (r *TranscriptValidationResult) IsValid() bool {
	return r.RoundsValid && r.BudgetsValid && r.IncreasingValid &&
		r.RejectionsValid && r.OutcomeValid && r.LedgerHashValid
}

// SignedTranscriptValidationResult adds the COSE signature check to a transcript audit.
type SignedTranscriptValidationResult struct {
	TranscriptValidationResult
	SignatureValid bool
}

// IsValid returns true if the signature and all transcript checks passed
func (r *SignedTranscriptValidationResult) IsValid() bool {
	return r.SignatureValid && r.TranscriptValidationResult.IsValid()
}
