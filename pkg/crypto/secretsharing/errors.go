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
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters indicates invalid scheme parameters
	ErrInvalidParameters = errors.New("invalid secret sharing parameters")

	// ErrInsufficientShares indicates not enough shares were provided for reconstruction
	ErrInsufficientShares = errors.New("insufficient shares for threshold reconstruction")

	// ErrDuplicateShareIndex indicates two shares have the same evaluation point
	ErrDuplicateShareIndex = errors.New("duplicate share index")

	// ErrConsistency indicates surplus shares do not agree with the reconstructed polynomial
	ErrConsistency = errors.New("inconsistent shares")

	// ErrInvalidShare indicates a share failed validation
	ErrInvalidShare = errors.New("invalid share")

	// ErrChecksumMismatch indicates a share's checksum does not match its contents
	ErrChecksumMismatch = errors.New("share checksum mismatch")

	// ErrSchemeMismatch indicates shares from different sharing events were mixed
	ErrSchemeMismatch = errors.New("shares belong to different schemes")

	// ErrUnsupportedFormat indicates an unknown share serialization format
	ErrUnsupportedFormat = errors.New("unsupported share format")
)

// InvalidParametersError wraps ErrInvalidParameters with the offending parameter.
type InvalidParametersError struct {
	Parameter string
	Reason    string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Parameter, e.Reason)
}

func (e *InvalidParametersError) Unwrap() error {
	return ErrInvalidParameters
}

// InsufficientSharesError wraps ErrInsufficientShares with details.
type InsufficientSharesError struct {
	Have      int
	Threshold int
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares: have %d, need %d", e.Have, e.Threshold)
}

func (e *InsufficientSharesError) Unwrap() error {
	return ErrInsufficientShares
}

// DuplicateShareIndexError wraps ErrDuplicateShareIndex with the colliding
// index and the positions of both shares in the input.
type DuplicateShareIndexError struct {
	Index  int
	First  int
	Second int
}

func (e *DuplicateShareIndexError) Error() string {
	return fmt.Sprintf("duplicate share index %d at positions %d and %d", e.Index, e.First, e.Second)
}

func (e *DuplicateShareIndexError) Unwrap() error {
	return ErrDuplicateShareIndex
}

// ConsistencyError wraps ErrConsistency with the index of the first share
// that does not lie on the polynomial interpolated from the first K shares.
type ConsistencyError struct {
	Index     int
	Threshold int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("share %d does not lie on the polynomial defined by the first %d shares",
		e.Index, e.Threshold)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}

func invalidParameter(parameter, format string, args ...any) error {
	return &InvalidParametersError{
		Parameter: parameter,
		Reason:    fmt.Sprintf(format, args...),
	}
}
