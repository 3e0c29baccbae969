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

// Package file provides a directory-backed implementation of storage.Store.
// Each share is written as its own document at
// <root>/<scheme-id>/share-<x>.<format> so that shares can be handed to
// their holders as individual files.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/storage"
)

const (
	// Default directory permissions (owner rwx only)
	defaultDirPerms = 0700

	// Share documents are readable by the owner only
	shareFilePerms = 0600

	sharePrefix = "share-"
)

// FileStorage is a file-based implementation of storage.Store. It is
// thread-safe within one process.
type FileStorage struct {
	mu      sync.RWMutex
	rootDir string
	format  secretsharing.Format
	closed  bool
}

var _ storage.Store = (*FileStorage)(nil)

// New creates a FileStorage rooted at rootDir that writes documents in
// format. The root directory is created with 0700 permissions if it
// doesn't exist.
func New(rootDir string, format secretsharing.Format) (*FileStorage, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("file storage: root directory cannot be empty")
	}
	if _, err := secretsharing.ParseFormat(string(format)); err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}

	if err := os.MkdirAll(rootDir, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file storage: failed to create root directory: %w", err)
	}

	return &FileStorage{
		rootDir: rootDir,
		format:  format,
	}, nil
}

// Path returns the file a share with index x of a scheme is written to.
func (f *FileStorage) Path(schemeID uuid.UUID, x int) string {
	return filepath.Join(f.rootDir, schemeID.String(), sharePrefix+strconv.Itoa(x)+"."+string(f.format))
}

// Save writes the share as a single-share document.
func (f *FileStorage) Save(share secretsharing.Share) error {
	if err := storage.CheckShare(&share); err != nil {
		return err
	}
	data, err := secretsharing.MarshalShares([]secretsharing.Share{share}, f.format)
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}

	path := f.Path(share.SchemeID, share.X)
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: failed to create scheme directory: %w", err)
	}
	if err := os.WriteFile(path, data, shareFilePerms); err != nil {
		return fmt.Errorf("file storage: failed to write share %d: %w", share.X, err)
	}
	return nil
}

// Load reads the share with index x of a scheme in any supported format.
func (f *FileStorage) Load(schemeID uuid.UUID, x int) (secretsharing.Share, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return secretsharing.Share{}, storage.ErrClosed
	}

	shares, err := f.readScheme(schemeID)
	if err != nil {
		return secretsharing.Share{}, err
	}
	for _, s := range shares {
		if s.X == x {
			return s, nil
		}
	}
	return secretsharing.Share{}, storage.ErrNotFound
}

// List returns all shares of a scheme ordered by index.
func (f *FileStorage) List(schemeID uuid.UUID) ([]secretsharing.Share, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}

	shares, err := f.readScheme(schemeID)
	if err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return nil, storage.ErrNotFound
	}
	return shares, nil
}

// Schemes returns the ids of all scheme directories.
func (f *FileStorage) Schemes() ([]uuid.UUID, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}

	entries, err := os.ReadDir(f.rootDir)
	if err != nil {
		return nil, fmt.Errorf("file storage: failed to list schemes: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := uuid.Parse(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	storage.SortSchemes(ids)
	return ids, nil
}

// Delete removes the document of one share.
func (f *FileStorage) Delete(schemeID uuid.UUID, x int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}

	removed := false
	for _, format := range []secretsharing.Format{secretsharing.FormatJSON, secretsharing.FormatCBOR} {
		path := filepath.Join(f.rootDir, schemeID.String(), sharePrefix+strconv.Itoa(x)+"."+string(format))
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("file storage: failed to delete share %d: %w", x, err)
		}
		removed = true
	}
	if !removed {
		return storage.ErrNotFound
	}

	// Drop the scheme directory once it is empty
	_ = os.Remove(filepath.Join(f.rootDir, schemeID.String()))
	return nil
}

// Close marks the store closed. Files are left in place.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// readScheme parses every share document in a scheme directory. Shares
// whose scheme id does not match the directory are rejected.
func (f *FileStorage) readScheme(schemeID uuid.UUID) ([]secretsharing.Share, error) {
	dir := filepath.Join(f.rootDir, schemeID.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file storage: failed to read scheme %s: %w", schemeID, err)
	}

	var shares []secretsharing.Share
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, sharePrefix) {
			continue
		}
		format, ok := formatForName(name)
		if !ok {
			continue
		}

		path := filepath.Join(dir, name)
		// #nosec G304 - path is built from the store root and a directory listing
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("file storage: failed to read %s: %w", name, err)
		}
		decoded, err := secretsharing.UnmarshalShares(data, format)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", storage.ErrInvalidShare, name, err)
		}
		for _, s := range decoded {
			if s.SchemeID != schemeID {
				return nil, fmt.Errorf("%w: %s belongs to scheme %s", storage.ErrInvalidShare, name, s.SchemeID)
			}
			shares = append(shares, s)
		}
	}

	storage.SortShares(shares)
	return shares, nil
}

func formatForName(name string) (secretsharing.Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return secretsharing.FormatJSON, true
	case ".cbor":
		return secretsharing.FormatCBOR, true
	default:
		return "", false
	}
}
