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

package rand

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

// seedContext separates deterministic RNG keys from any other BLAKE3 use of
// the same seed bytes.
const seedContext = "go-shamir 2025 deterministic rng"

// ErrClosed is returned when reading from a closed deterministic resolver
var ErrClosed = errors.New("deterministic RNG is closed")

// ErrEmptySeed indicates a deterministic resolver was requested without a seed
var ErrEmptySeed = errors.New("deterministic RNG requires a non-empty seed")

// DeterministicResolver produces a reproducible ChaCha20 keystream keyed by
// BLAKE3(seed). Two resolvers built from the same seed return identical
// byte sequences.
type DeterministicResolver struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
	closed bool
}

var _ Resolver = (*DeterministicResolver)(nil)

func newDeterministicResolver(seed []byte) (Resolver, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}

	key := make([]byte, chacha20.KeySize)
	blake3.DeriveKey(seedContext, seed, key)

	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chacha20 stream: %w", err)
	}
	return &DeterministicResolver{cipher: c}, nil
}

// Read fills p with the next len(p) bytes of the keystream.
func (d *DeterministicResolver) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	clear(p)
	d.cipher.XORKeyStream(p, p)
	return len(p), nil
}

func (d *DeterministicResolver) Mode() Mode {
	return ModeDeterministic
}

func (d *DeterministicResolver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
