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

package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedGCD(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		gcd  int64
	}{
		{name: "coprime", a: 240, b: 46, gcd: 2},
		{name: "textbook", a: 99, b: 78, gcd: 3},
		{name: "prime modulus", a: 166, b: 1613, gcd: 1},
		{name: "negative a", a: -25, b: 1613, gcd: 1},
		{name: "negative b", a: 30, b: -12, gcd: 6},
		{name: "both negative", a: -30, b: -12, gcd: 6},
		{name: "zero b", a: 17, b: 0, gcd: 17},
		{name: "zero a", a: 0, b: 17, gcd: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := big.NewInt(tt.a), big.NewInt(tt.b)
			x, y := ExtendedGCD(a, b)

			lhs := new(big.Int).Add(new(big.Int).Mul(a, x), new(big.Int).Mul(b, y))
			assert.Equal(t, tt.gcd, lhs.Int64())

			// Arguments are never mutated
			assert.Equal(t, tt.a, a.Int64())
			assert.Equal(t, tt.b, b.Int64())
		})
	}
}

func TestModularInverse(t *testing.T) {
	p := big.NewInt(1613)

	for a := int64(1); a < p.Int64(); a++ {
		inv, err := ModularInverse(big.NewInt(a), p)
		require.NoError(t, err)
		assert.Equal(t, 1, inv.Sign(), "inverse of %d must be positive", a)
		assert.Equal(t, -1, inv.Cmp(p), "inverse of %d must be reduced", a)

		product := Mul(big.NewInt(a), inv, p)
		require.Equal(t, int64(1), product.Int64(), "a=%d", a)
	}
}

func TestModularInverse_NegativeInput(t *testing.T) {
	p := big.NewInt(1613)
	inv, err := ModularInverse(big.NewInt(-5), p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), Mul(big.NewInt(-5), inv, p).Int64())
}

func TestModularInverse_LargePrime(t *testing.T) {
	// 2^127 - 1
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	a, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	inv, err := ModularInverse(a, p)
	require.NoError(t, err)
	assert.Equal(t, 0, Mul(a, inv, p).Cmp(big.NewInt(1)))
}

func TestModularInverse_Errors(t *testing.T) {
	p := big.NewInt(1613)

	_, err := ModularInverse(big.NewInt(0), p)
	assert.ErrorIs(t, err, ErrNotInvertible)

	_, err = ModularInverse(big.NewInt(3226), p)
	assert.ErrorIs(t, err, ErrNotInvertible)

	_, err = ModularInverse(big.NewInt(4), big.NewInt(12))
	assert.ErrorIs(t, err, ErrNotInvertible)

	_, err = ModularInverse(big.NewInt(4), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidModulus)

	_, err = ModularInverse(big.NewInt(4), nil)
	assert.ErrorIs(t, err, ErrInvalidModulus)
}

func TestDivMod(t *testing.T) {
	p := big.NewInt(1613)

	tests := []struct {
		num, den int64
	}{
		{num: 1234, den: 166},
		{num: 0, den: 94},
		{num: -7, den: 3},
		{num: 5000, den: -11},
		{num: 1, den: 1612},
	}

	for _, tt := range tests {
		num, den := big.NewInt(tt.num), big.NewInt(tt.den)
		q, err := DivMod(num, den, p)
		require.NoError(t, err)

		assert.Equal(t, 0, Mul(den, q, p).Cmp(Mod(num, p)), "num=%d den=%d", tt.num, tt.den)
	}

	_, err := DivMod(big.NewInt(5), big.NewInt(1613), p)
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestArithmetic(t *testing.T) {
	p := big.NewInt(7)

	assert.Equal(t, int64(1), Add(big.NewInt(5), big.NewInt(3), p).Int64())
	assert.Equal(t, int64(5), Sub(big.NewInt(1), big.NewInt(3), p).Int64())
	assert.Equal(t, int64(6), Mul(big.NewInt(-1), big.NewInt(1), p).Int64())
	assert.Equal(t, int64(3), Mod(big.NewInt(-4), p).Int64())
}

func TestIsPrime(t *testing.T) {
	mersenne127 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

	assert.True(t, IsPrime(big.NewInt(2)))
	assert.True(t, IsPrime(big.NewInt(1613)))
	assert.True(t, IsPrime(mersenne127))

	assert.False(t, IsPrime(nil))
	assert.False(t, IsPrime(big.NewInt(0)))
	assert.False(t, IsPrime(big.NewInt(1)))
	assert.False(t, IsPrime(big.NewInt(-7)))
	assert.False(t, IsPrime(big.NewInt(1612)))
	assert.False(t, IsPrime(big.NewInt(561))) // Carmichael number
}
