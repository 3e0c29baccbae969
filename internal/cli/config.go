// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-shamir.
//
// go-shamir is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-shamir/internal/config"
	sssrand "github.com/jeremyhahn/go-shamir/pkg/crypto/rand"
	"github.com/jeremyhahn/go-shamir/pkg/dealer"
	"github.com/jeremyhahn/go-shamir/pkg/logging"
	"github.com/jeremyhahn/go-shamir/pkg/metrics"
)

// Config holds global CLI flags
type Config struct {
	// ConfigFile is the path to the YAML configuration file
	ConfigFile string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables debug logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
	}
}

// Flags that override the scheme section of the configuration file
var schemeFlags = []string{"prime", "threshold", "shares", "format", "seed"}

// loadConfig loads the YAML configuration and applies flag and environment
// overrides bound through viper.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	a.bind(cmd, schemeFlags...)
	if err := a.checkOutputFormat(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}

	if a.v.IsSet("prime") {
		cfg.Scheme.Prime = a.v.GetString("prime")
	}
	if a.v.IsSet("threshold") {
		cfg.Scheme.Threshold = a.v.GetInt("threshold")
	}
	if a.v.IsSet("shares") {
		cfg.Scheme.Shares = a.v.GetInt("shares")
	}
	if a.v.IsSet("format") {
		cfg.Output.Format = a.v.GetString("format")
	}
	if a.v.IsSet("seed") {
		cfg.Random.Mode = string(sssrand.ModeDeterministic)
		cfg.Random.Seed = a.v.GetString("seed")
	}
	if a.v.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}
	return cfg, nil
}

// newLogger creates the logger for cfg writing to w
func newLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	opts := cfg.LoggerOptions()
	opts.Writer = w
	return logging.New(opts)
}

// newDealer creates a dealer for cfg. The returned function releases the
// randomness resolver.
func newDealer(cfg *config.Config, logger *logging.Logger) (*dealer.Dealer, func(), error) {
	prime, err := cfg.Prime()
	if err != nil {
		return nil, nil, err
	}

	resolver, err := sssrand.NewResolver(cfg.RandomConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create random resolver: %w", err)
	}

	d, err := dealer.New(&dealer.Config{
		Prime:     prime,
		Threshold: cfg.Scheme.Threshold,
		Total:     cfg.Scheme.Shares,
		Resolver:  resolver,
		Logger:    logger,
	})
	if err != nil {
		_ = resolver.Close()
		return nil, nil, err
	}

	return d, func() { _ = resolver.Close() }, nil
}

// writeMetrics writes the metrics textfile when one is configured
func writeMetrics(cfg *config.Config) error {
	if !cfg.Metrics.Enabled || cfg.Metrics.Textfile == "" {
		return nil
	}
	return metrics.WriteTextfile(cfg.Metrics.Textfile)
}
