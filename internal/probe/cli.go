package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/arcade/pkg/logger"
)

const (
	defaultBaseURL = "http://localhost:9080"
	defaultTeam    = "arcade-probe"
	defaultTimeout = 10 * time.Second
)

// NewRootCommand builds the arcade-probe command tree.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}
	var logFormat string

	root := &cobra.Command{
		Use:           "arcade-probe",
		Short:         "Exercise the Logic Arcade proxy contract",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.Options{Format: logFormat, Output: cmd.ErrOrStderr()}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if cfg.Verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "url", defaultBaseURL, "Base URL of the arcade server")
	flags.StringVar(&cfg.Team, "team", defaultTeam, "Team name sent on team-scoped requests")
	flags.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Log every check")
	flags.StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(
		&cobra.Command{
			Use:   "smoke",
			Short: "Check health, identity and body validation on every endpoint",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := Smoke(cmd.Context(), cfg)
				return err
			},
		},
		readCommand("leaderboard", "Print the leaderboard", func(ctx context.Context) (any, error) {
			return newClient(cfg).Leaderboard(ctx)
		}),
		readCommand("status", "Print the challenge phase", func(ctx context.Context) (any, error) {
			return newClient(cfg).Status(ctx)
		}),
		readCommand("team-status", "Print whether --team already submitted", func(ctx context.Context) (any, error) {
			return newClient(cfg).TeamStatus(ctx, cfg.Team)
		}),
		readCommand("chat", "Print the chat history of --team", func(ctx context.Context) (any, error) {
			return newClient(cfg).ChatHistory(ctx, cfg.Team)
		}),
	)
	return root
}

func readCommand(use, short string, fetch func(context.Context) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
