package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/randomwalker/internal/config"
	"github.com/nao1215/randomwalker/internal/fetcher"
	"github.com/nao1215/randomwalker/internal/log"
	"github.com/nao1215/randomwalker/internal/report"
	"github.com/nao1215/randomwalker/internal/walker"
	"github.com/nao1215/randomwalker/internal/weburl"
)

// NewWalkCmd creates the walk command.
func NewWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk [URL]",
		Short: "Walk from a page by following random links",
		Long: `Walk starts at URL (or the configured start URL) and follows a randomly
chosen outbound link, repeating for --steps hops.

Each hop fetches the source page, picks a random link, follows its
redirects, checks the destination with the safety filter and sanitizes it.
Links that fail are skipped and another one is tried.

A page without usable links sends the walk back to the previous page.
A destination the safety filter refuses stops the walk with an error.

Examples:
  # One hop from the default start page
  randomwalker walk

  # Ten hops from a given page, two seconds apart
  randomwalker walk https://example.com/ -n 10 -i 2s

  # Reproducible walk written as Markdown
  randomwalker walk https://example.com/ -n 5 --seed 42 -m -o walk.md

  # Walk through a local Tor SOCKS proxy, avoiding a page
  randomwalker walk -x 127.0.0.1:9050 --visited https://example.com/boring`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWalkCmd,
	}

	cmd.Flags().IntP("steps", "n", config.DefaultSteps,
		"Number of hops to take")
	cmd.Flags().DurationP("auto-interval", "i", config.DefaultAutoInterval,
		"Pause between hops")
	cmd.Flags().Uint64P("seed", "s", 0,
		"Random seed for link selection (0 = time based)")
	cmd.Flags().Int("max-failure-streak", config.DefaultMaxFailureStreak,
		"Dead ends in a row before skipping back past the current page")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("include-html", false,
		"Include the sanitized HTML of every page in the JSON report")

	addFetchFlags(cmd)
	return cmd
}

func runWalkCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildWalkConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	includeHTML, err := cmd.Flags().GetBool("include-html")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	transcript, walkErr := runWalk(ctx, cfg, f, logger)
	if err := outputReport(cfg, transcript, cmd.OutOrStdout(), includeHTML); err != nil {
		return err
	}

	if walkErr != nil {
		if ctx.Err() != nil {
			logger.Warn("walk interrupted", slog.Int("steps", len(transcript.Records)))
			return nil
		}
		return fmt.Errorf("walk stopped after %d of %d steps: %w", len(transcript.Records), cfg.Steps, walkErr)
	}
	return nil
}

// buildWalkConfig layers the walk flags and the URL argument over loadConfig.
func buildWalkConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if len(args) == 1 {
		cfg.StartURL = args[0]
	}
	if flags.Changed("auto-interval") {
		if cfg.AutoInterval, err = flags.GetDuration("auto-interval"); err != nil {
			return nil, err
		}
	}
	if cfg.Steps, err = flags.GetInt("steps"); err != nil {
		return nil, err
	}
	if cfg.Seed, err = flags.GetUint64("seed"); err != nil {
		return nil, err
	}
	if cfg.MaxFailureStreak, err = flags.GetInt("max-failure-streak"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runWalk walks cfg.Steps hops from cfg.StartURL. The transcript is
// returned even when the walk stops early.
func runWalk(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) (*report.Transcript, error) {
	// A concrete seed is chosen up front so that it can be reported and
	// the walk replayed.
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // not used for security
	}

	transcript := report.NewTranscript(cfg.StartURL, seed)

	w := walker.New(f,
		walker.WithSeed(seed),
		walker.WithVisited(weburl.NewVisitedSet(cfg.Visited...)),
		walker.WithLogger(logger),
	)
	session, err := walker.NewSession(cfg.StartURL, w,
		walker.WithMaxFailureStreak(cfg.MaxFailureStreak),
		walker.WithSessionLogger(logger),
	)
	if err != nil {
		transcript.Finish(nil)
		return transcript, err
	}

	logger.Info("starting walk",
		slog.String("start", cfg.StartURL),
		slog.Int("steps", cfg.Steps),
		slog.Uint64("seed", seed),
	)

	err = session.Auto(ctx, cfg.Steps, cfg.AutoInterval, func(r walker.AutoReport) {
		transcript.Add(r)
		if r.Err != nil {
			logger.Info("step failed",
				slog.Int("attempt", r.Attempt),
				slog.String("outcome", r.Outcome.String()),
				slog.Any("error", r.Err),
			)
			return
		}
		logger.Info("step",
			slog.Int("attempt", r.Attempt),
			slog.String("url", r.Current.URL),
			slog.String("label", r.Current.Label),
		)
	})
	transcript.Finish(session)
	return transcript, err
}

// outputReport writes the transcript in the configured format to the
// configured destination.
func outputReport(cfg *config.Config, transcript *report.Transcript, stdout io.Writer, includeHTML bool) error {
	output := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Transcripts can hold page contents; keep them private to the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithHTML(includeHTML))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(transcript); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
