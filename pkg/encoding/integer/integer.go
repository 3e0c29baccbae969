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

// Package integer converts byte strings to and from non-negative big
// integers so they can be used as field elements.
//
// The integer form of a byte string loses its leading zero bytes, so Encode
// returns the original length alongside the value and Decode requires it
// back. Passing the length through keeps the round trip exact:
//
//	v, n := integer.Encode([]byte{0x00, 0x2a})
//	b, _ := integer.Decode(v, n) // []byte{0x00, 0x2a}
package integer

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNilValue indicates a nil integer was passed to Decode
	ErrNilValue = errors.New("integer value is nil")

	// ErrNegativeValue indicates a negative integer was passed to Decode
	ErrNegativeValue = errors.New("integer value is negative")

	// ErrLengthTooShort indicates the requested length cannot hold the value
	ErrLengthTooShort = errors.New("length too short for integer value")
)

// Encode interprets b as a big-endian unsigned integer and returns it along
// with len(b).
func Encode(b []byte) (*big.Int, int) {
	return new(big.Int).SetBytes(b), len(b)
}

// Decode returns the big-endian representation of v left-padded with zero
// bytes to exactly length bytes.
func Decode(v *big.Int, length int) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	if v.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrLengthTooShort, length)
	}

	size := ByteLen(v)
	if size > length {
		return nil, fmt.Errorf("%w: value needs %d bytes, got %d", ErrLengthTooShort, size, length)
	}

	out := make([]byte, length)
	v.FillBytes(out)
	return out, nil
}

// DecodeMinimal returns the shortest big-endian representation of v. Zero
// decodes to an empty slice.
func DecodeMinimal(v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	if v.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	return v.Bytes(), nil
}

// ByteLen returns the minimal number of bytes needed to hold |v|.
func ByteLen(v *big.Int) int {
	return (v.BitLen() + 7) / 8
}
