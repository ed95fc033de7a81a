package auctionapi

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
)

// SignedTranscript holds raw COSE_Sign1 bytes over a CBOR transcript.
type SignedTranscript []byte

// SignedTranscriptBase64 is the standard base64 form of a signed transcript, for JSON transport.
type SignedTranscriptBase64 string

// SignedTranscriptGzip is the gzipped, URL-safe unpadded base64 form, for query strings.
type SignedTranscriptGzip string

// EncodeBase64 encodes the signed transcript with standard base64.
func (s SignedTranscript) EncodeBase64() SignedTranscriptBase64 {
	return SignedTranscriptBase64(base64.StdEncoding.EncodeToString(s))
}

// Decode decodes standard base64 back into raw bytes.
func (s SignedTranscriptBase64) Decode() (SignedTranscript, error) {
	data, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("decode base64 transcript: %w", err)
	}
	return SignedTranscript(data), nil
}

func (s SignedTranscriptBase64) String() string {
	return string(s)
}

// CompressGzip gzips the signed transcript and encodes it as URL-safe base64 without padding.
func (s SignedTranscript) CompressGzip() (SignedTranscriptGzip, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(s); err != nil {
		return "", fmt.Errorf("gzip transcript: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close gzip writer: %w", err)
	}
	return SignedTranscriptGzip(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

// Decompress reverses CompressGzip.
func (s SignedTranscriptGzip) Decompress() (SignedTranscript, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("decode url-safe base64: %w", err)
	}

	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gunzip transcript: %w", err)
	}
	return SignedTranscript(data), nil
}

func (s SignedTranscriptGzip) String() string {
	return string(s)
}
