package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbidding/auctionapi"
	"github.com/cloudx-io/openbidding/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		transcriptPath string
		publicKeyPath  string
		signed         bool
		format         string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit an auction transcript",
		Long: `Audit an auction transcript independently of the engine that produced it.

Exit codes:
  0 - Validation passed
  1 - Validation failed
  2 - Invalid input or runtime error`,
		Example: `  openbid validate --transcript transcript.cbor
  openbid validate --transcript transcript.cose --signed --pub public_key.pem --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return usageError(fmt.Errorf("unknown format %q", format))
			}
			if signed && publicKeyPath == "" {
				return usageError(fmt.Errorf("--signed requires --pub"))
			}
			return validateTranscriptFile(cmd.OutOrStdout(), transcriptPath, signed, publicKeyPath, format)
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to transcript file: CBOR, JSON, or COSE_Sign1 with --signed (required)")
	cmd.Flags().BoolVar(&signed, "signed", false, "Transcript is a signed COSE_Sign1 message")
	cmd.Flags().StringVar(&publicKeyPath, "pub", "", "PEM public key that signed the transcript")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}

func validateTranscriptFile(out io.Writer, path string, signed bool, publicKeyPath, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return usageError(fmt.Errorf("failed to read transcript: %w", err))
	}

	var report validationReport
	if signed {
		pemData, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return usageError(fmt.Errorf("failed to read public key: %w", err))
		}
		publicKey, err := auctionapi.ParsePublicKeyPEM(pemData)
		if err != nil {
			return usageError(err)
		}

		result, transcript, err := validation.ValidateSignedTranscript(auctionapi.SignedTranscript(data), publicKey)
		if err != nil {
			return usageError(err)
		}
		report = signedReport(result, transcript)
	} else {
		transcript, err := decodeTranscript(data)
		if err != nil {
			return usageError(err)
		}
		result, err := validation.ValidateTranscript(transcript)
		if err != nil {
			return usageError(err)
		}
		report = unsignedReport(result, transcript)
	}

	if format == "json" {
		if err := report.writeJSON(out); err != nil {
			return usageError(err)
		}
	} else {
		report.writeText(out)
	}

	if !report.Valid {
		return &exitError{code: exitInvalid}
	}
	return nil
}

// decodeTranscript accepts the CBOR written by "run --out" and the JSON printed by "run --format json".
func decodeTranscript(data []byte) (*auctionapi.Transcript, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return auctionapi.DecodeTranscriptJSON(trimmed)
	}
	return auctionapi.DecodeTranscriptCBOR(data)
}
