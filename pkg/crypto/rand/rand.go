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

// Package rand provides the random sources used to draw polynomial
// coefficients.
//
// # Overview
//
// The sharing engine only needs an io.Reader. This package wraps the
// available sources behind a single Resolver interface so applications can
// select one from configuration:
//   - Auto: the best available source (currently the software CSPRNG)
//   - Software: crypto/rand from the standard library
//   - Deterministic: a ChaCha20 keystream derived from a caller supplied seed
//
// # Configuration
//
//	// Production: cryptographically secure randomness
//	rng, _ := rand.NewResolver(rand.ModeSoftware)
//	scheme, _ := secretsharing.NewScheme(secret, 5, 3, prime,
//	    secretsharing.WithRandom(rng))
//
//	// Tests: reproducible coefficients
//	rng, _ := rand.NewResolver(&rand.Config{
//	    Mode: rand.ModeDeterministic,
//	    Seed: []byte("fixture"),
//	})
//
// # Security
//
// Coefficients drawn from a predictable source let anyone holding k-1
// shares recover the secret. ModeDeterministic exists for reproducible test
// vectors and must never be used to share real secrets.
//
// # Thread Safety
//
// All Resolver implementations are safe for concurrent use.
package rand

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto automatically selects the best available RNG.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand (stdlib secure random)
	ModeSoftware Mode = "software"

	// ModeDeterministic uses a seeded ChaCha20 keystream. Test use only.
	ModeDeterministic Mode = "deterministic"
)

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the RNG source to use.
	// Defaults to ModeAuto if not specified.
	Mode Mode

	// Seed keys the deterministic source (required if Mode=ModeDeterministic).
	Seed []byte
}

// Resolver is a random source selected from configuration. It implements
// io.Reader, making it usable anywhere crypto/rand.Reader is, including
// crypto/rand.Int which the sharing engine uses to sample field elements.
type Resolver interface {
	io.Reader

	// Mode returns the mode the resolver was created with.
	Mode() Mode

	// Close releases the source. Reads after Close may fail.
	Close() error
}

// NewResolver creates a new RNG resolver with the given configuration.
// config may be nil, a Mode or a *Config. If config is nil or empty, auto
// mode is used.
func NewResolver(config interface{}) (Resolver, error) {
	cfg := normalizeConfig(config)
	return newResolver(cfg)
}

// normalizeConfig converts various config types to *Config.
func normalizeConfig(config interface{}) *Config {
	if config == nil {
		return &Config{Mode: ModeAuto}
	}

	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		if v.Mode == "" {
			v.Mode = ModeAuto
		}
		return v
	default:
		return &Config{Mode: ModeAuto}
	}
}

// newResolver creates the actual resolver implementation.
func newResolver(cfg *Config) (Resolver, error) {
	switch cfg.Mode {
	case ModeAuto, ModeSoftware:
		return newSoftwareResolver(cfg.Mode)
	case ModeDeterministic:
		return newDeterministicResolver(cfg.Seed)
	default:
		return nil, fmt.Errorf("unknown RNG mode: %s", cfg.Mode)
	}
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct {
	mode Mode
}

var _ Resolver = (*SoftwareResolver)(nil)

func newSoftwareResolver(mode Mode) (Resolver, error) {
	return &SoftwareResolver{mode: mode}, nil
}

// Read implements io.Reader for compatibility with crypto/rand.Reader.
func (s *SoftwareResolver) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Mode() Mode {
	return s.mode
}

func (s *SoftwareResolver) Close() error {
	return nil // Nothing to close
}
