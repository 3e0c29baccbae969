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

package secretsharing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-shamir/pkg/crypto/field"
)

var one = big.NewInt(1)

// Option configures NewScheme.
type Option func(*schemeOptions)

type schemeOptions struct {
	random io.Reader
	id     *uuid.UUID
}

// WithRandom sets the source used to draw polynomial coefficients and the
// scheme id. Defaults to crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(o *schemeOptions) {
		if r != nil {
			o.random = r
		}
	}
}

// WithSchemeID sets the id stamped on every share instead of a random one.
func WithSchemeID(id uuid.UUID) Option {
	return func(o *schemeOptions) {
		o.id = &id
	}
}

// Scheme holds the polynomial for one secret sharing event. It is immutable
// after construction and safe for concurrent use.
type Scheme struct {
	id        uuid.UUID
	total     int
	threshold int
	prime     *big.Int

	// coefficients[0] is the secret; coefficients[1:] are uniform in [1, p-1].
	coefficients []*big.Int
}

// NewScheme builds a random polynomial of degree threshold-1 over GF(prime)
// whose constant term is secret.
//
// Requirements: 1 <= threshold <= total, prime is prime, prime > total and
// 0 <= secret < prime. Violations return an error wrapping
// ErrInvalidParameters.
func NewScheme(secret *big.Int, total, threshold int, prime *big.Int, opts ...Option) (*Scheme, error) {
	if err := validateParameters(secret, total, threshold, prime); err != nil {
		return nil, err
	}

	o := schemeOptions{random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}

	coefficients := make([]*big.Int, threshold)
	coefficients[0] = new(big.Int).Set(secret)

	// rand.Int samples [0, p-2]; shifting by one gives [1, p-1]
	bound := new(big.Int).Sub(prime, one)
	for i := 1; i < threshold; i++ {
		c, err := rand.Int(o.random, bound)
		if err != nil {
			return nil, fmt.Errorf("failed to generate random coefficients: %w", err)
		}
		coefficients[i] = c.Add(c, one)
	}

	var id uuid.UUID
	if o.id != nil {
		id = *o.id
	} else {
		var err error
		id, err = uuid.NewRandomFromReader(o.random)
		if err != nil {
			return nil, fmt.Errorf("failed to generate scheme id: %w", err)
		}
	}

	return &Scheme{
		id:           id,
		total:        total,
		threshold:    threshold,
		prime:        new(big.Int).Set(prime),
		coefficients: coefficients,
	}, nil
}

func validateParameters(secret *big.Int, total, threshold int, prime *big.Int) error {
	if threshold < 1 {
		return invalidParameter("threshold", "must be at least 1, got %d", threshold)
	}
	if total < threshold {
		return invalidParameter("total", "total shares (%d) must be >= threshold (%d)", total, threshold)
	}
	if prime == nil {
		return invalidParameter("prime", "prime modulus is required")
	}
	if !field.IsPrime(prime) {
		return invalidParameter("prime", "%s is not prime", prime)
	}
	if prime.Cmp(big.NewInt(int64(total))) <= 0 {
		return invalidParameter("prime", "prime (%s) must be greater than total shares (%d)", prime, total)
	}
	if secret == nil {
		return invalidParameter("secret", "secret value is required")
	}
	if secret.Sign() < 0 {
		return invalidParameter("secret", "secret must be non-negative")
	}
	if secret.Cmp(prime) >= 0 {
		return invalidParameter("secret", "secret (%d bits) must be less than the prime modulus (%d bits)",
			secret.BitLen(), prime.BitLen())
	}
	return nil
}

// ConstructShares evaluates the polynomial at x = 1..total and returns the
// shares in ascending x order. The result depends only on the polynomial,
// so repeated calls return equal shares.
func (s *Scheme) ConstructShares() []Share {
	shares := make([]Share, s.total)
	for i := range shares {
		x := i + 1
		shares[i] = Share{
			X:         x,
			Y:         s.evaluate(big.NewInt(int64(x))),
			SchemeID:  s.id,
			Threshold: s.threshold,
			Total:     s.total,
			Prime:     new(big.Int).Set(s.prime),
		}
		shares[i].Seal()
	}
	return shares
}

// evaluate computes f(x) mod p using Horner's method:
// f(x) = c0 + x(c1 + x(c2 + ... + x*c(k-1)))
func (s *Scheme) evaluate(x *big.Int) *big.Int {
	result := new(big.Int)
	for i := len(s.coefficients) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, s.coefficients[i])
		result.Mod(result, s.prime)
	}
	return result
}

// ID returns the id stamped on this scheme's shares.
func (s *Scheme) ID() uuid.UUID {
	return s.id
}

// Threshold returns the number of shares required to reconstruct.
func (s *Scheme) Threshold() int {
	return s.threshold
}

// Total returns the number of shares the scheme produces.
func (s *Scheme) Total() int {
	return s.total
}

// Prime returns a copy of the field modulus.
func (s *Scheme) Prime() *big.Int {
	return new(big.Int).Set(s.prime)
}
