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

package config

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/field"
	sssrand "github.com/jeremyhahn/go-shamir/pkg/crypto/rand"
	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/logging"
)

// Named primes accepted by SchemeConfig.Prime
const (
	PrimeMersenne127 = "mersenne127"
	PrimeMersenne521 = "mersenne521"
	PrimeP256        = "p256"
)

// Config represents the complete sss configuration
type Config struct {
	Scheme  SchemeConfig  `yaml:"scheme"`
	Random  RandomConfig  `yaml:"random"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Output  OutputConfig  `yaml:"output"`
}

// SchemeConfig holds the sharing parameters
type SchemeConfig struct {
	// Prime is a decimal or 0x-prefixed hex integer, or one of the named
	// primes mersenne127, mersenne521 or p256
	Prime     string `yaml:"prime"`
	Threshold int    `yaml:"threshold"`
	Shares    int    `yaml:"shares"`
}

// RandomConfig selects the coefficient randomness source
type RandomConfig struct {
	Mode string `yaml:"mode"` // auto, software, deterministic
	Seed string `yaml:"seed"` // required for deterministic
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus metrics
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"` // written after each command when set
}

// OutputConfig controls share document encoding
type OutputConfig struct {
	Format string `yaml:"format"` // json, cbor
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Scheme: SchemeConfig{
			Prime:     PrimeP256,
			Threshold: 3,
			Shares:    5,
		},
		Random: RandomConfig{
			Mode: string(sssrand.ModeAuto),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format: string(secretsharing.FormatJSON),
		},
	}
}

// Load reads configuration from a YAML file on top of Default and applies
// environment variable overrides. An empty path loads only the defaults
// and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies SSS_* environment variable overrides
func applyEnvOverrides(cfg *Config) {
	// Scheme
	if prime := os.Getenv("SSS_PRIME"); prime != "" {
		cfg.Scheme.Prime = prime
	}
	envInt("SSS_THRESHOLD", &cfg.Scheme.Threshold)
	envInt("SSS_SHARES", &cfg.Scheme.Shares)

	// Random
	if mode := os.Getenv("SSS_RANDOM_MODE"); mode != "" {
		cfg.Random.Mode = mode
	}
	if seed := os.Getenv("SSS_RANDOM_SEED"); seed != "" {
		cfg.Random.Seed = seed
	}

	// Logging
	if level := os.Getenv("SSS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("SSS_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// Metrics
	if enabled := os.Getenv("SSS_METRICS_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			log.Printf("Warning: invalid SSS_METRICS_ENABLED value %q, using %t: %v",
				enabled, cfg.Metrics.Enabled, err)
		} else {
			cfg.Metrics.Enabled = v
		}
	}
	if textfile := os.Getenv("SSS_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}

	// Output
	if format := os.Getenv("SSS_OUTPUT_FORMAT"); format != "" {
		cfg.Output.Format = format
	}
}

func envInt(key string, dst *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using %d: %v", key, raw, *dst, err)
		return
	}
	if v < 1 {
		log.Printf("Warning: invalid %s value %q (must be positive), using %d", key, raw, *dst)
		return
	}
	*dst = v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Scheme.Threshold < 1 {
		return fmt.Errorf("invalid threshold: %d (must be >= 1)", c.Scheme.Threshold)
	}
	if c.Scheme.Shares < c.Scheme.Threshold {
		return fmt.Errorf("invalid shares: %d (must be >= threshold %d)", c.Scheme.Shares, c.Scheme.Threshold)
	}

	prime, err := c.Prime()
	if err != nil {
		return err
	}
	if !field.IsPrime(prime) {
		return fmt.Errorf("invalid prime: %s is not prime", c.Scheme.Prime)
	}
	if prime.Cmp(big.NewInt(int64(c.Scheme.Shares))) <= 0 {
		return fmt.Errorf("invalid prime: must exceed the number of shares %d", c.Scheme.Shares)
	}

	switch sssrand.Mode(strings.ToLower(c.Random.Mode)) {
	case sssrand.ModeAuto, sssrand.ModeSoftware:
	case sssrand.ModeDeterministic:
		if c.Random.Seed == "" {
			return fmt.Errorf("random seed is required in deterministic mode")
		}
	default:
		return fmt.Errorf("invalid random mode: %s (must be auto, software, or deterministic)", c.Random.Mode)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if _, err := secretsharing.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	return nil
}

// Prime parses Scheme.Prime
func (c *Config) Prime() (*big.Int, error) {
	return ParsePrime(c.Scheme.Prime)
}

// ParsePrime resolves a named prime or parses a decimal or 0x-prefixed hex
// integer. It does not test primality.
func ParsePrime(s string) (*big.Int, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return nil, fmt.Errorf("invalid prime: empty")
	case PrimeMersenne127:
		return mersenne(127), nil
	case PrimeMersenne521:
		return mersenne(521), nil
	case PrimeP256:
		// 2^256 - 189, the largest prime below 2^256
		p := new(big.Int).Lsh(big.NewInt(1), 256)
		return p.Sub(p, big.NewInt(189)), nil
	}

	p, ok := new(big.Int).SetString(name, 0)
	if !ok {
		return nil, fmt.Errorf("invalid prime: cannot parse %q", s)
	}
	if p.Sign() <= 0 {
		return nil, fmt.Errorf("invalid prime: %s is not positive", s)
	}
	return p, nil
}

func mersenne(exp uint) *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), exp)
	return p.Sub(p, big.NewInt(1))
}

// RandomConfig returns the resolver configuration for the random section
func (c *Config) RandomConfig() *sssrand.Config {
	cfg := &sssrand.Config{Mode: sssrand.Mode(strings.ToLower(c.Random.Mode))}
	if c.Random.Seed != "" {
		cfg.Seed = []byte(c.Random.Seed)
	}
	return cfg
}

// LoggerOptions returns logging options for the logging section
func (c *Config) LoggerOptions() *logging.Options {
	return &logging.Options{
		Level:  c.Logging.Level,
		Format: logging.Format(strings.ToLower(c.Logging.Format)),
	}
}

// ShareFormat returns the parsed output format
func (c *Config) ShareFormat() secretsharing.Format {
	f, err := secretsharing.ParseFormat(c.Output.Format)
	if err != nil {
		return secretsharing.FormatJSON
	}
	return f
}
