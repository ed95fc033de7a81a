// Command openbid runs round-based auctions from scenario files and audits
// their transcripts.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbidding/config"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1 // transcript failed validation
	exitUsage   = 2 // bad input or runtime error
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}

func newRootCmd() *cobra.Command {
	var (
		settings config.Settings
		logLevel string
		pretty   bool
	)

	cmd := &cobra.Command{
		Use:           "openbid",
		Short:         "Run and audit round-based auctions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return usageError(err)
			}
			settings = loaded

			if cmd.Flags().Changed("log-level") {
				settings.LogLevel = logLevel
			}
			level, err := zerolog.ParseLevel(settings.LogLevel)
			if err != nil {
				return usageError(fmt.Errorf("invalid log level %q", settings.LogLevel))
			}
			configureLogger(level, pretty)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error); overrides OPENBID_LOG_LEVEL")
	cmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human-readable console logs on stderr")

	cmd.AddCommand(newRunCmd(&settings))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newKeygenCmd())
	return cmd
}

func configureLogger(level zerolog.Level, pretty bool) {
	zerolog.SetGlobalLevel(level)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
