package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/auctionapi"
	"github.com/cloudx-io/openbidding/config"
)

type runOptions struct {
	scenarioPath string
	maxRounds    int
	timeout      time.Duration
	parallel     bool
	format       string
	outPath      string
	signKeyPath  string
}

func newRunCmd(settings *config.Settings) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an auction scenario to completion",
		Example: `  openbid run --scenario flat.json
  openbid run --scenario flat.json --max-rounds 20 --parallel --format json
  openbid run --scenario flat.json --out transcript.cose --sign-key signing.pem`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := settings.AuctionConfig(&log.Logger)
			if cmd.Flags().Changed("max-rounds") {
				cfg.MaxRounds = opts.maxRounds
			}
			if cmd.Flags().Changed("timeout") {
				cfg.DecisionTimeout = opts.timeout
			}
			if cmd.Flags().Changed("parallel") {
				cfg.ParallelFetch = opts.parallel
			}
			if !cmd.Flags().Changed("sign-key") {
				opts.signKeyPath = settings.SigningKeyPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScenario(ctx, cmd.OutOrStdout(), opts, cfg, settings.LLM)
		},
	}

	cmd.Flags().StringVar(&opts.scenarioPath, "scenario", "", "Path to scenario JSON file (required)")
	cmd.Flags().IntVar(&opts.maxRounds, "max-rounds", auction.DefaultMaxRounds, "Force-close after this many rounds")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", auction.DefaultDecisionTimeout, "Timeout for a single party decision")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Fetch all decisions of a round concurrently")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write the transcript (CBOR, or COSE_Sign1 with --sign-key) to this file")
	cmd.Flags().StringVar(&opts.signKeyPath, "sign-key", "", "PEM private key used to sign the transcript; overrides OPENBID_SIGNING_KEY_PATH")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runScenario(ctx context.Context, out io.Writer, opts runOptions, cfg auction.Config, llm config.LLMSettings) error {
	if opts.format != "text" && opts.format != "json" {
		return usageError(fmt.Errorf("unknown format %q", opts.format))
	}

	scenario, err := loadScenario(opts.scenarioPath)
	if err != nil {
		return usageError(err)
	}
	participants, err := scenario.participants(llm)
	if err != nil {
		return usageError(err)
	}

	var signer *auctionapi.KeyManager
	if opts.signKeyPath != "" {
		signer, err = readSigningKey(opts.signKeyPath)
		if err != nil {
			return usageError(err)
		}
	}

	controller, err := auction.NewController(cfg)
	if err != nil {
		return usageError(err)
	}
	if err := controller.Start(scenario.Item, participants); err != nil {
		return usageError(err)
	}

	result, err := controller.Run(ctx)
	if err != nil {
		return usageError(fmt.Errorf("auction aborted: %w", err))
	}

	transcript, err := controller.Transcript()
	if err != nil {
		return usageError(err)
	}

	if opts.outPath != "" {
		if err := writeTranscript(opts.outPath, transcript, signer); err != nil {
			return usageError(err)
		}
		log.Info().Str("path", opts.outPath).Bool("signed", signer != nil).Msg("transcript written")
	}

	if opts.format == "json" {
		data, err := transcript.EncodeJSON()
		if err != nil {
			return usageError(err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printResult(out, result, transcript)
	return nil
}

func readSigningKey(path string) (*auctionapi.KeyManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	km, err := auctionapi.LoadKeyManager(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return km, nil
}

func writeTranscript(path string, transcript *auctionapi.Transcript, signer *auctionapi.KeyManager) error {
	var (
		data []byte
		err  error
	)
	if signer != nil {
		data, err = signer.Sign(transcript)
	} else {
		data, err = transcript.EncodeCBOR()
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
