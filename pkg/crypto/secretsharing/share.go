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
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// checksumContext domain-separates share checksums.
const checksumContext = "go-shamir 2025 share checksum v1"

// Share is one point (X, Y) on the sharing polynomial.
//
// Only X and Y are needed by ReconstructSecret. The remaining fields are
// metadata filled in by ConstructShares so that a holder of a share document
// knows which scheme and field it belongs to.
type Share struct {
	// X is the evaluation point and public index of the share (1 to Total)
	X int `json:"x"`

	// Y is f(X) mod p
	Y *big.Int `json:"y"`

	// SchemeID identifies the sharing event that produced the share
	SchemeID uuid.UUID `json:"scheme_id"`

	// Threshold is the minimum number of shares required to reconstruct (K)
	Threshold int `json:"threshold,omitempty"`

	// Total is the total number of shares created (N)
	Total int `json:"total,omitempty"`

	// Prime is the field modulus
	Prime *big.Int `json:"prime,omitempty"`

	// SecretLength is the byte length of the original secret when the secret
	// was a byte string, or zero when it was an integer
	SecretLength int `json:"secret_length,omitempty"`

	// Checksum is a BLAKE3 digest of all other fields
	Checksum []byte `json:"checksum,omitempty"`
}

// Validate checks that the share is structurally valid. Metadata checks are
// skipped for fields that are unset.
func (s *Share) Validate() error {
	if s.X < 1 {
		return fmt.Errorf("%w: index %d (must be >= 1)", ErrInvalidShare, s.X)
	}
	if s.Y == nil {
		return fmt.Errorf("%w: share %d has no value", ErrInvalidShare, s.X)
	}
	if s.Y.Sign() < 0 {
		return fmt.Errorf("%w: share %d has a negative value", ErrInvalidShare, s.X)
	}
	if s.Total > 0 {
		if s.X > s.Total {
			return fmt.Errorf("%w: index %d (must be <= total %d)", ErrInvalidShare, s.X, s.Total)
		}
		if s.Threshold < 1 || s.Threshold > s.Total {
			return fmt.Errorf("%w: threshold %d (must be in [1, %d])", ErrInvalidShare, s.Threshold, s.Total)
		}
	}
	if s.Prime != nil {
		if s.Y.Cmp(s.Prime) >= 0 {
			return fmt.Errorf("%w: share %d value is not reduced modulo the prime", ErrInvalidShare, s.X)
		}
		if s.Prime.Cmp(big.NewInt(int64(s.X))) <= 0 {
			return fmt.Errorf("%w: share %d index is not below the prime", ErrInvalidShare, s.X)
		}
	}
	if s.SecretLength < 0 {
		return fmt.Errorf("%w: negative secret length %d", ErrInvalidShare, s.SecretLength)
	}
	return nil
}

// Seal computes and stores the share checksum. It must be called again
// after any field is modified.
func (s *Share) Seal() {
	s.Checksum = s.checksum()
}

// Verify validates the share and checks its checksum.
func (s *Share) Verify() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(s.Checksum) == 0 {
		return fmt.Errorf("%w: share %d has empty checksum", ErrInvalidShare, s.X)
	}
	if subtle.ConstantTimeCompare(s.Checksum, s.checksum()) != 1 {
		return fmt.Errorf("%w: share %d", ErrChecksumMismatch, s.X)
	}
	return nil
}

// Clone returns a deep copy of the share.
func (s *Share) Clone() Share {
	c := *s
	if s.Y != nil {
		c.Y = new(big.Int).Set(s.Y)
	}
	if s.Prime != nil {
		c.Prime = new(big.Int).Set(s.Prime)
	}
	if s.Checksum != nil {
		c.Checksum = append([]byte(nil), s.Checksum...)
	}
	return c
}

// String returns a short description of the share that omits its value.
func (s *Share) String() string {
	return fmt.Sprintf("Share{X: %d, Threshold: %d/%d, Scheme: %s}",
		s.X, s.Threshold, s.Total, s.SchemeID)
}

func (s *Share) checksum() []byte {
	h := blake3.NewDeriveKey(checksumContext)

	var buf [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeBig := func(v *big.Int) {
		var b []byte
		if v != nil {
			b = v.Bytes()
		}
		writeInt(len(b))
		_, _ = h.Write(b)
	}

	_, _ = h.Write(s.SchemeID[:])
	writeInt(s.X)
	writeBig(s.Y)
	writeInt(s.Threshold)
	writeInt(s.Total)
	writeBig(s.Prime)
	writeInt(s.SecretLength)

	return h.Sum(nil)
}
