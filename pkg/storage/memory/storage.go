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

// Package memory provides an in-memory implementation of storage.Store.
// Shares are deep-copied on the way in and out to prevent external
// modification.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/storage"
)

// Storage is an in-memory implementation of storage.Store.
type Storage struct {
	mu     sync.RWMutex
	data   map[uuid.UUID]map[int]secretsharing.Share
	closed bool
}

var _ storage.Store = (*Storage)(nil)

// New creates a new in-memory share store.
func New() *Storage {
	return &Storage{
		data: make(map[uuid.UUID]map[int]secretsharing.Share),
	}
}

// Save stores a copy of the share.
func (s *Storage) Save(share secretsharing.Share) error {
	if err := storage.CheckShare(&share); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	scheme, ok := s.data[share.SchemeID]
	if !ok {
		scheme = make(map[int]secretsharing.Share)
		s.data[share.SchemeID] = scheme
	}
	scheme[share.X] = share.Clone()
	return nil
}

// Load returns a copy of the share with index x of a scheme.
func (s *Storage) Load(schemeID uuid.UUID, x int) (secretsharing.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return secretsharing.Share{}, storage.ErrClosed
	}

	share, ok := s.data[schemeID][x]
	if !ok {
		return secretsharing.Share{}, storage.ErrNotFound
	}
	return share.Clone(), nil
}

// List returns copies of all shares of a scheme ordered by index.
func (s *Storage) List(schemeID uuid.UUID) ([]secretsharing.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	scheme, ok := s.data[schemeID]
	if !ok || len(scheme) == 0 {
		return nil, storage.ErrNotFound
	}

	shares := make([]secretsharing.Share, 0, len(scheme))
	for _, share := range scheme {
		shares = append(shares, share.Clone())
	}
	storage.SortShares(shares)
	return shares, nil
}

// Schemes returns the ids of all stored schemes in sorted order.
func (s *Storage) Schemes() ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	ids := make([]uuid.UUID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	storage.SortSchemes(ids)
	return ids, nil
}

// Delete removes one share.
func (s *Storage) Delete(schemeID uuid.UUID, x int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	scheme, ok := s.data[schemeID]
	if !ok {
		return storage.ErrNotFound
	}
	if _, ok := scheme[x]; !ok {
		return storage.ErrNotFound
	}
	delete(scheme, x)
	if len(scheme) == 0 {
		delete(s.data, schemeID)
	}
	return nil
}

// Close drops all shares and marks the store closed.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
