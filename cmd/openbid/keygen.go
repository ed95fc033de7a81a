package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbidding/auctionapi"
)

func newKeygenCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ECDSA P-256 key pair for signing transcripts",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := generateSigningKeys(outDir); err != nil {
				return usageError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for signing_key.pem and public_key.pem")
	return cmd
}

func generateSigningKeys(outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	km, err := auctionapi.NewKeyManager()
	if err != nil {
		return err
	}
	privatePEM, err := km.PrivateKeyPEM()
	if err != nil {
		return err
	}
	publicPEM, err := km.PublicKeyPEM()
	if err != nil {
		return err
	}

	privatePath := filepath.Join(outDir, "signing_key.pem")
	if err := os.WriteFile(privatePath, []byte(privatePEM), 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	publicPath := filepath.Join(outDir, "public_key.pem")
	if err := os.WriteFile(publicPath, []byte(publicPEM), 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	log.Info().Str("private", privatePath).Str("public", publicPath).Msg("signing keys generated")
	return nil
}
