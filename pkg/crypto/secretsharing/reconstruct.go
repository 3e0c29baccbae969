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
	"fmt"
	"math/big"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/field"
)

// ReconstructSecret recovers the constant term of the sharing polynomial from
// at least threshold shares with pairwise-distinct indices.
//
// The first threshold shares are interpolated at x = 0. Any further shares
// must lie on the same polynomial; otherwise a *ConsistencyError is returned
// instead of one of several candidate secrets. No partial result is returned
// on error.
func ReconstructSecret(shares []Share, prime *big.Int, threshold int) (*big.Int, error) {
	xs, ys, err := preparePoints(shares, prime, threshold)
	if err != nil {
		return nil, err
	}

	secret, err := interpolate(xs[:threshold], ys[:threshold], new(big.Int), prime)
	if err != nil {
		return nil, err
	}

	if err := checkConsistency(shares, xs, ys, threshold, prime); err != nil {
		return nil, err
	}
	return secret, nil
}

// VerifyShares checks that every share lies on the polynomial interpolated
// from the first threshold shares, without returning the secret.
func VerifyShares(shares []Share, prime *big.Int, threshold int) error {
	xs, ys, err := preparePoints(shares, prime, threshold)
	if err != nil {
		return err
	}
	return checkConsistency(shares, xs, ys, threshold, prime)
}

// preparePoints validates the reconstruction inputs and returns the share
// coordinates reduced modulo prime.
func preparePoints(shares []Share, prime *big.Int, threshold int) ([]*big.Int, []*big.Int, error) {
	if prime == nil || !field.IsPrime(prime) {
		return nil, nil, invalidParameter("prime", "%v is not prime", prime)
	}
	if threshold < 1 {
		return nil, nil, invalidParameter("threshold", "must be at least 1, got %d", threshold)
	}
	if len(shares) < threshold {
		return nil, nil, &InsufficientSharesError{Have: len(shares), Threshold: threshold}
	}

	xs := make([]*big.Int, len(shares))
	ys := make([]*big.Int, len(shares))
	seen := make(map[string]int, len(shares))

	for i := range shares {
		share := &shares[i]
		if share.X < 1 {
			return nil, nil, fmt.Errorf("%w: index %d at position %d (must be >= 1)", ErrInvalidShare, share.X, i)
		}
		if share.Y == nil {
			return nil, nil, fmt.Errorf("%w: share %d has no value", ErrInvalidShare, share.X)
		}

		x := field.Mod(big.NewInt(int64(share.X)), prime)
		if x.Sign() == 0 {
			return nil, nil, fmt.Errorf("%w: index %d is congruent to 0 modulo the prime", ErrInvalidShare, share.X)
		}

		key := x.String()
		if first, ok := seen[key]; ok {
			return nil, nil, &DuplicateShareIndexError{Index: share.X, First: first, Second: i}
		}
		seen[key] = i

		xs[i] = x
		ys[i] = field.Mod(share.Y, prime)
	}
	return xs, ys, nil
}

// checkConsistency confirms that every share beyond the first threshold lies
// on the polynomial through the first threshold points. Errors name the
// share's own index, not its reduction modulo the prime.
func checkConsistency(shares []Share, xs, ys []*big.Int, threshold int, prime *big.Int) error {
	for m := threshold; m < len(xs); m++ {
		expected, err := interpolate(xs[:threshold], ys[:threshold], xs[m], prime)
		if err != nil {
			return err
		}
		if expected.Cmp(ys[m]) != 0 {
			return &ConsistencyError{Index: shares[m].X, Threshold: threshold}
		}
	}
	return nil
}

// interpolate evaluates at x = at the unique polynomial of degree
// len(xs)-1 through the points (xs[i], ys[i]) using modular Lagrange
// interpolation with a combined denominator:
//
//	num_i = Π_{j≠i} (x_j - at)
//	den_i = Π_{j≠i} (x_j - x_i)
//	den   = Π_i den_i
//	total = Σ_i (num_i * den * y_i) / den_i
//	f(at) = total / den
//
// The xs must be pairwise distinct modulo prime.
func interpolate(xs, ys []*big.Int, at, prime *big.Int) (*big.Int, error) {
	k := len(xs)
	nums := make([]*big.Int, k)
	dens := make([]*big.Int, k)

	for i := 0; i < k; i++ {
		num, den := big.NewInt(1), big.NewInt(1)
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			num = field.Mul(num, new(big.Int).Sub(xs[j], at), prime)
			den = field.Mul(den, new(big.Int).Sub(xs[j], xs[i]), prime)
		}
		nums[i], dens[i] = num, den
	}

	den := big.NewInt(1)
	for _, d := range dens {
		den = field.Mul(den, d, prime)
	}

	total := new(big.Int)
	for i := 0; i < k; i++ {
		term := field.Mul(field.Mul(nums[i], den, prime), ys[i], prime)
		q, err := field.DivMod(term, dens[i], prime)
		if err != nil {
			return nil, fmt.Errorf("lagrange basis %d: %w", i, err)
		}
		total.Add(total, q)
	}

	result, err := field.DivMod(total, den, prime)
	if err != nil {
		return nil, fmt.Errorf("lagrange denominator: %w", err)
	}
	return field.Mod(result.Add(result, prime), prime), nil
}
