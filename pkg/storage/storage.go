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

// Package storage defines a store for share documents grouped by the scheme
// that produced them. File and in-memory implementations live in the file
// and memory subpackages.
package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
)

var (
	// ErrClosed is returned when attempting to use a closed store.
	ErrClosed = errors.New("storage: closed")

	// ErrNotFound is returned when a share or scheme is not found.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidShare is returned when a share cannot be stored.
	ErrInvalidShare = errors.New("storage: invalid share")

	// ErrAmbiguousScheme is returned when a scheme must be chosen but the
	// store holds more than one.
	ErrAmbiguousScheme = errors.New("storage: more than one scheme stored")
)

// Store persists shares keyed by scheme id and share index.
// All implementations must be thread-safe.
type Store interface {
	// Save stores a share, overwriting any share with the same scheme id
	// and index.
	Save(share secretsharing.Share) error

	// Load returns the share with index x of a scheme.
	// Returns ErrNotFound if it does not exist.
	Load(schemeID uuid.UUID, x int) (secretsharing.Share, error)

	// List returns all shares of a scheme ordered by index.
	// Returns ErrNotFound if the scheme has no shares.
	List(schemeID uuid.UUID) ([]secretsharing.Share, error)

	// Schemes returns the ids of all stored schemes in sorted order.
	Schemes() ([]uuid.UUID, error)

	// Delete removes one share.
	// Returns ErrNotFound if it does not exist.
	Delete(schemeID uuid.UUID, x int) error

	// Close releases any resources held by the store.
	Close() error
}

// CheckShare reports whether share can be stored.
func CheckShare(share *secretsharing.Share) error {
	if share.SchemeID == uuid.Nil {
		return fmt.Errorf("%w: share %d has no scheme id", ErrInvalidShare, share.X)
	}
	if err := share.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidShare, err)
	}
	return nil
}

// SortShares orders shares by index.
func SortShares(shares []secretsharing.Share) {
	sort.Slice(shares, func(i, j int) bool { return shares[i].X < shares[j].X })
}

// SortSchemes orders scheme ids by their string form.
func SortSchemes(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// Only returns the single scheme id in s.
// Returns ErrNotFound for an empty store and ErrAmbiguousScheme when more
// than one scheme is stored.
func Only(s Store) (uuid.UUID, error) {
	ids, err := s.Schemes()
	if err != nil {
		return uuid.Nil, err
	}
	switch len(ids) {
	case 0:
		return uuid.Nil, ErrNotFound
	case 1:
		return ids[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %d schemes", ErrAmbiguousScheme, len(ids))
	}
}
