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

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/storage"
	"github.com/jeremyhahn/go-shamir/pkg/storage/file"
)

// maxInputSize bounds secrets and share documents read by the CLI
const maxInputSize = 16 << 20

var errInputTooLarge = errors.New("input exceeds 16 MiB")

// readInput reads path, or r when path is empty or "-"
func readInput(r io.Reader, path string) ([]byte, error) {
	if path != "" && path != "-" {
		// #nosec G304 - Input path is provided by the user
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxInputSize {
		return nil, errInputTooLarge
	}
	return data, nil
}

// writeOutput writes data to path with owner-only permissions, or to w
// when path is empty or "-"
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// formatForPath picks the share format from a file extension, falling back
// to def for unknown extensions and stdin
func formatForPath(path string, def secretsharing.Format) secretsharing.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return secretsharing.FormatJSON
	case ".cbor":
		return secretsharing.FormatCBOR
	default:
		return def
	}
}

// readShares reads share documents from paths, or from r when paths is
// empty, and concatenates their shares in order
func readShares(r io.Reader, paths []string, def secretsharing.Format) ([]secretsharing.Share, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	var shares []secretsharing.Share
	for _, path := range paths {
		data, err := readInput(r, path)
		if err != nil {
			return nil, err
		}
		format := def
		if path != "-" {
			format = formatForPath(path, def)
		}
		decoded, err := secretsharing.UnmarshalShares(data, format)
		if err != nil {
			name := path
			if name == "-" {
				name = "stdin"
			}
			return nil, fmt.Errorf("failed to decode shares from %s: %w", name, err)
		}
		shares = append(shares, decoded...)
	}
	return shares, nil
}

// loadShares reads shares from a share directory written by split --dir
// when dir is set, and from files or r otherwise. An empty scheme selects
// the only scheme in the directory.
func loadShares(r io.Reader, paths []string, dir, scheme string, def secretsharing.Format) ([]secretsharing.Share, error) {
	if dir == "" {
		return readShares(r, paths, def)
	}
	if len(paths) > 0 {
		return nil, errors.New("share files and --dir cannot be combined")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("share directory: %w", err)
	}

	store, err := file.New(dir, def)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var id uuid.UUID
	if scheme != "" {
		if id, err = uuid.Parse(scheme); err != nil {
			return nil, fmt.Errorf("invalid scheme id %q: %w", scheme, err)
		}
	} else if id, err = storage.Only(store); err != nil {
		return nil, fmt.Errorf("share directory %s: %w", dir, err)
	}

	return store.List(id)
}
