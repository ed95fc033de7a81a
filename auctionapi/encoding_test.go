package auctionapi

import (
	"strings"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestSignedTranscript_EncodeBase64(t *testing.T) {
	signed := SignedTranscript([]byte("mock-cose-transcript-data"))

	encoded := signed.EncodeBase64()
	check.NotEqual(t, "", encoded.String())

	decoded, err := encoded.Decode()
	check.Nil(t, err)
	check.Equal(t, signed, decoded)
}

func TestSignedTranscript_CompressGzip(t *testing.T) {
	signed := SignedTranscript([]byte("mock-cose-transcript-data-for-compression-testing"))

	compressed, err := signed.CompressGzip()
	check.Nil(t, err)

	compressedStr := compressed.String()
	check.NotEqual(t, "", compressedStr)
	check.False(t, strings.ContainsAny(compressedStr, "+/="))

	decompressed, err := compressed.Decompress()
	check.Nil(t, err)
	check.Equal(t, signed, decompressed)

	again, err := signed.CompressGzip()
	check.Nil(t, err)
	check.Equal(t, compressed, again)
}

func TestSignedTranscriptBase64_Decode(t *testing.T) {
	tests := []struct {
		name      string
		input     SignedTranscriptBase64
		expectErr bool
	}{
		{"valid", SignedTranscriptBase64("dGVzdA=="), false},
		{"empty", SignedTranscriptBase64(""), false},
		{"invalid characters", SignedTranscriptBase64("!!!"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Decode()
			check.Equal(t, tt.expectErr, err != nil)
		})
	}
}

func TestSignedTranscriptGzip_Decompress(t *testing.T) {
	tests := []struct {
		name  string
		input SignedTranscriptGzip
	}{
		{"invalid base64", SignedTranscriptGzip("!!!")},
		{"not gzip", SignedTranscriptGzip("dGVzdA")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Decompress()
			check.Error(t, err)
		})
	}
}
