package core

import (
	"crypto/sha256"
	"fmt"
)

// ComputeEventHash chains one ledger event onto the previous hash.
// This is used by the controller (to seal a transcript) and validation (to verify it).
//
// Formula: SHA256(prev_hash + "|" + round + "|" + party_id + "|" + action + "|" + sprintf("%.6f", amount) + "|" + rationale + "|" + rejection_reason)
//
// Absent amounts are hashed as the empty string so a PASS and a zero bid differ.
func ComputeEventHash(prevHash string, event RoundEvent) string {
	amount := ""
	if event.Amount != nil {
		amount = fmt.Sprintf("%.6f", *event.Amount)
	}
	data := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s",
		prevHash, event.Round, event.PartyID, event.Action, amount, event.Rationale, event.RejectionReason)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeLedgerHash folds ComputeEventHash over the events in order, starting from the empty string.
// An empty ledger hashes to the SHA256 of the empty string.
func ComputeLedgerHash(events []RoundEvent) string {
	if len(events) == 0 {
		return fmt.Sprintf("%x", sha256.Sum256(nil))
	}

	hash := ""
	for _, event := range events {
		hash = ComputeEventHash(hash, event)
	}
	return hash
}
