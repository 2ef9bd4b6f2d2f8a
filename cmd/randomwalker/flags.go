package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/randomwalker/internal/config"
	"github.com/nao1215/randomwalker/internal/fetcher"
)

// addFetchFlags registers the flags shared by walk and serve.
func addFetchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("config", "c", "",
		"Configuration file path (default: .randomwalker in current or home directory)")
	flags.DurationP("timeout", "t", config.DefaultOpenTimeout,
		"Connect timeout for each request")
	flags.Duration("read-timeout", config.DefaultReadTimeout,
		"Timeout waiting for response headers of each request")
	flags.Int("max-redirects", config.DefaultMaxRedirects,
		"Requests one fetch may issue while following redirects")
	flags.Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes; larger bodies are truncated")
	flags.StringP("user-agent", "A", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	flags.StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	flags.Float64("rps", 0,
		"Maximum requests per second (0 = unlimited)")
	flags.StringArray("visited", nil,
		"URL the walk must never land on (repeatable)")
}

// loadConfig builds the configuration from defaults, the config file and
// the flags the user actually set, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("timeout") {
		if cfg.OpenTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("read-timeout") {
		if cfg.ReadTimeout, err = flags.GetDuration("read-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-redirects") {
		if cfg.MaxRedirects, err = flags.GetInt("max-redirects"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rps") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rps"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("visited") {
		visited, err := flags.GetStringArray("visited")
		if err != nil {
			return nil, err
		}
		cfg.Visited = append(cfg.Visited, visited...)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag value from the command or its root.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newFetcher creates the HTTP fetcher described by cfg.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*fetcher.HTTPFetcher, error) {
	f, err := fetcher.New(
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithTimeouts(cfg.OpenTimeout, cfg.ReadTimeout),
		fetcher.WithMaxRedirects(cfg.MaxRedirects),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithProxy(cfg.ProxyAddress),
		fetcher.WithRateLimit(cfg.RequestsPerSecond),
		fetcher.WithLogger(logger),
	)
	if err != nil {
		if errors.Is(err, fetcher.ErrInvalidProxyAddress) {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return f, nil
}
