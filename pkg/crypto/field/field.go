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

// Package field implements exact arithmetic in the prime field GF(p).
//
// Elements are represented as *big.Int values. Every function returns a
// freshly allocated result and never mutates its arguments, so values may be
// shared freely between goroutines.
package field

import (
	"errors"
	"fmt"
	"math/big"
)

// primalityRounds is the number of Miller-Rabin rounds run by IsPrime in
// addition to the Baillie-PSW test performed by big.Int.ProbablyPrime.
const primalityRounds = 20

var (
	// ErrInvalidModulus indicates a modulus that is nil or less than 2
	ErrInvalidModulus = errors.New("invalid field modulus")

	// ErrNotInvertible indicates an element that has no inverse modulo p
	ErrNotInvertible = errors.New("element is not invertible")

	one = big.NewInt(1)
)

// ExtendedGCD returns x and y such that a*x + b*y = gcd(a, b).
//
// The iterative extended Euclidean algorithm is used, so inputs may be
// negative. The gcd is taken to be non-negative and the coefficients are
// adjusted to match.
func ExtendedGCD(a, b *big.Int) (x, y *big.Int) {
	_, x, y = egcd(a, b)
	return x, y
}

// egcd returns gcd(a, b) along with the Bezout coefficients.
func egcd(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)
		oldR, r = r, new(big.Int).Sub(oldR, new(big.Int).Mul(q, r))
		oldS, s = s, new(big.Int).Sub(oldS, new(big.Int).Mul(q, s))
		oldT, t = t, new(big.Int).Sub(oldT, new(big.Int).Mul(q, t))
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModularInverse returns a⁻¹ mod p, the element satisfying a*a⁻¹ ≡ 1 (mod p).
// Returns ErrNotInvertible when gcd(a, p) != 1, which for a prime p means
// a ≡ 0 (mod p).
func ModularInverse(a, p *big.Int) (*big.Int, error) {
	if err := checkModulus(p); err != nil {
		return nil, err
	}
	g, x, _ := egcd(Mod(a, p), p)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) = %s", ErrNotInvertible, a, p, g)
	}
	return Mod(x, p), nil
}

// DivMod performs field division, returning (num * den⁻¹) mod p.
// For any den with den mod p != 0, den*DivMod(num, den, p) ≡ num (mod p).
func DivMod(num, den, p *big.Int) (*big.Int, error) {
	inv, err := ModularInverse(den, p)
	if err != nil {
		return nil, err
	}
	return Mul(num, inv, p), nil
}

// Mod returns the representative of a in [0, p-1].
func Mod(a, p *big.Int) *big.Int {
	// big.Int.Mod implements Euclidean modulus, so the result is never negative.
	return new(big.Int).Mod(a, p)
}

// Add returns (a + b) mod p.
func Add(a, b, p *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, p)
}

// Sub returns (a - b) mod p.
func Sub(a, b, p *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, p)
}

// Mul returns (a * b) mod p.
func Mul(a, b, p *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, p)
}

// IsPrime reports whether p is (with overwhelming probability) prime.
func IsPrime(p *big.Int) bool {
	if p == nil || p.Sign() <= 0 {
		return false
	}
	return p.ProbablyPrime(primalityRounds)
}

func checkModulus(p *big.Int) error {
	if p == nil || p.Cmp(one) <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidModulus, p)
	}
	return nil
}
