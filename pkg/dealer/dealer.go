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

// Package dealer splits byte secrets into Shamir shares and combines them
// back. It joins the integer codec, the sharing engine, a randomness
// resolver, logging and metrics into one pipeline.
package dealer

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/field"
	sssrand "github.com/jeremyhahn/go-shamir/pkg/crypto/rand"
	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/encoding/integer"
	"github.com/jeremyhahn/go-shamir/pkg/logging"
	"github.com/jeremyhahn/go-shamir/pkg/metrics"
)

// ErrEmptySecret is returned by Split for a zero length secret.
var ErrEmptySecret = errors.New("secret is empty")

// Config configures a Dealer.
type Config struct {
	// Prime is the field modulus. It must exceed Total and the encoded secret.
	Prime *big.Int

	// Threshold is the number of shares required to reconstruct (K)
	Threshold int

	// Total is the number of shares to create (N)
	Total int

	// Resolver supplies coefficient randomness. Defaults to the software
	// CSPRNG resolver, which the dealer then owns and closes.
	Resolver sssrand.Resolver

	// Logger defaults to logging.DefaultLogger()
	Logger *logging.Logger
}

// Dealer performs Split and Combine. It is safe for concurrent use when its
// Resolver is.
type Dealer struct {
	prime        *big.Int
	threshold    int
	total        int
	resolver     sssrand.Resolver
	ownsResolver bool
	logger       *logging.Logger
}

// New validates cfg and returns a Dealer.
func New(cfg *Config) (*Dealer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", secretsharing.ErrInvalidParameters)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	d := &Dealer{
		prime:     new(big.Int).Set(cfg.Prime),
		threshold: cfg.Threshold,
		total:     cfg.Total,
		resolver:  cfg.Resolver,
		logger:    cfg.Logger,
	}
	if d.logger == nil {
		d.logger = logging.DefaultLogger()
	}
	if d.resolver == nil {
		r, err := sssrand.NewResolver(sssrand.ModeSoftware)
		if err != nil {
			return nil, fmt.Errorf("dealer: create resolver: %w", err)
		}
		d.resolver = r
		d.ownsResolver = true
	}
	d.logger = d.logger.With("component", "dealer")
	return d, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Threshold < 1:
		return &secretsharing.InvalidParametersError{Parameter: "threshold", Reason: fmt.Sprintf("%d is less than 1", cfg.Threshold)}
	case cfg.Total < cfg.Threshold:
		return &secretsharing.InvalidParametersError{Parameter: "total", Reason: fmt.Sprintf("%d is less than threshold %d", cfg.Total, cfg.Threshold)}
	case cfg.Prime == nil:
		return &secretsharing.InvalidParametersError{Parameter: "prime", Reason: "is nil"}
	case !field.IsPrime(cfg.Prime):
		return &secretsharing.InvalidParametersError{Parameter: "prime", Reason: "is not prime"}
	case cfg.Prime.Cmp(big.NewInt(int64(cfg.Total))) <= 0:
		return &secretsharing.InvalidParametersError{Parameter: "prime", Reason: fmt.Sprintf("must exceed total %d", cfg.Total)}
	}
	return nil
}

// Split encodes secret as a big-endian integer and splits it into Total
// shares, any Threshold of which recover it. Every share records the secret
// length so that leading zero bytes survive the round trip.
func (d *Dealer) Split(secret []byte) (shares []secretsharing.Share, err error) {
	start := time.Now()
	defer func() { d.record(metrics.OpSplit, start, err) }()

	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %w", secretsharing.ErrInvalidParameters, ErrEmptySecret)
	}

	value, length := integer.Encode(secret)
	scheme, err := secretsharing.NewScheme(value, d.total, d.threshold, d.prime,
		secretsharing.WithRandom(d.resolver))
	if err != nil {
		return nil, fmt.Errorf("dealer: split: %w", err)
	}

	shares = scheme.ConstructShares()
	for i := range shares {
		shares[i].SecretLength = length
		shares[i].Seal()
	}

	metrics.RecordShares(metrics.OpSplit, len(shares))
	d.logger.Info("secret split",
		"scheme_id", scheme.ID().String(),
		"threshold", d.threshold,
		"total", d.total,
		"prime_bits", d.prime.BitLen())
	return shares, nil
}

// Combine checks that all shares come from one sharing event, verifies their
// checksums and reconstructs the original bytes. The threshold, prime and
// secret length are taken from the share metadata.
func (d *Dealer) Combine(shares []secretsharing.Share) (secret []byte, err error) {
	start := time.Now()
	defer func() { d.record(metrics.OpCombine, start, err) }()

	ref, err := d.check(shares)
	if err != nil {
		return nil, err
	}

	value, err := secretsharing.ReconstructSecret(shares, ref.Prime, ref.Threshold)
	if err != nil {
		return nil, fmt.Errorf("dealer: combine: %w", err)
	}

	// Shares built directly with the engine carry no length
	if ref.SecretLength == 0 {
		secret, err = integer.DecodeMinimal(value)
	} else {
		secret, err = integer.Decode(value, ref.SecretLength)
	}
	if err != nil {
		return nil, fmt.Errorf("dealer: combine: %w", err)
	}

	metrics.RecordShares(metrics.OpCombine, len(shares))
	d.logger.Info("secret combined",
		"scheme_id", ref.SchemeID.String(),
		"shares", len(shares),
		"threshold", ref.Threshold)
	return secret, nil
}

// Verify runs every check Combine does, including the consistency of
// surplus shares, without reconstructing the secret.
func (d *Dealer) Verify(shares []secretsharing.Share) (err error) {
	start := time.Now()
	defer func() { d.record(metrics.OpVerify, start, err) }()

	ref, err := d.check(shares)
	if err != nil {
		return err
	}
	if err := secretsharing.VerifyShares(shares, ref.Prime, ref.Threshold); err != nil {
		return fmt.Errorf("dealer: verify: %w", err)
	}
	d.logger.Debug("shares verified", "scheme_id", ref.SchemeID.String(), "shares", len(shares))
	return nil
}

// check verifies each share and that all of them agree on their metadata.
// It returns the first share as the reference.
func (d *Dealer) check(shares []secretsharing.Share) (*secretsharing.Share, error) {
	if len(shares) == 0 {
		return nil, &secretsharing.InsufficientSharesError{Have: 0, Threshold: d.threshold}
	}

	ref := &shares[0]
	for i := range shares {
		s := &shares[i]
		if err := s.Verify(); err != nil {
			return nil, err
		}
		if s.Prime == nil || s.Threshold < 1 {
			return nil, fmt.Errorf("%w: share %d has no scheme metadata", secretsharing.ErrInvalidShare, s.X)
		}
		if i == 0 {
			continue
		}
		switch {
		case s.SchemeID != ref.SchemeID:
			return nil, fmt.Errorf("%w: share %d has scheme %s, expected %s",
				secretsharing.ErrSchemeMismatch, s.X, s.SchemeID, ref.SchemeID)
		case s.Threshold != ref.Threshold || s.Total != ref.Total:
			return nil, fmt.Errorf("%w: share %d has threshold %d/%d, expected %d/%d",
				secretsharing.ErrSchemeMismatch, s.X, s.Threshold, s.Total, ref.Threshold, ref.Total)
		case s.Prime.Cmp(ref.Prime) != 0:
			return nil, fmt.Errorf("%w: share %d has a different prime", secretsharing.ErrSchemeMismatch, s.X)
		case s.SecretLength != ref.SecretLength:
			return nil, fmt.Errorf("%w: share %d has secret length %d, expected %d",
				secretsharing.ErrSchemeMismatch, s.X, s.SecretLength, ref.SecretLength)
		}
	}
	return ref, nil
}

func (d *Dealer) record(operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(operation, ErrorType(err))
		d.logger.Warn("operation failed", "operation", operation, "error", err.Error())
	}
	metrics.RecordOperation(operation, status, time.Since(start).Seconds())
}

// ErrorType maps err to the error_type label used in metrics.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySecret):
		return "empty_secret"
	case errors.Is(err, secretsharing.ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, secretsharing.ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, secretsharing.ErrDuplicateShareIndex):
		return "duplicate_share_index"
	case errors.Is(err, secretsharing.ErrConsistency):
		return "consistency"
	case errors.Is(err, secretsharing.ErrChecksumMismatch):
		return "checksum_mismatch"
	case errors.Is(err, secretsharing.ErrSchemeMismatch):
		return "scheme_mismatch"
	case errors.Is(err, secretsharing.ErrInvalidShare):
		return "invalid_share"
	case errors.Is(err, integer.ErrLengthTooShort):
		return "length_mismatch"
	default:
		return "internal"
	}
}

// Threshold returns the configured threshold.
func (d *Dealer) Threshold() int {
	return d.threshold
}

// Total returns the configured number of shares.
func (d *Dealer) Total() int {
	return d.total
}

// Prime returns a copy of the configured prime.
func (d *Dealer) Prime() *big.Int {
	return new(big.Int).Set(d.prime)
}

// Close releases the resolver if the dealer created it.
func (d *Dealer) Close() error {
	if d.ownsResolver {
		return d.resolver.Close()
	}
	return nil
}
