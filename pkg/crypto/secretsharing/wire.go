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
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Format is a share document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// documentVersion is written into CBOR share bundles.
const documentVersion = 1

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCBOR:
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// shareBundle is the CBOR envelope for a list of shares.
type shareBundle struct {
	Version int             `cbor:"1,keyasint"`
	Shares  []shareDocument `cbor:"2,keyasint"`
}

// shareDocument is the CBOR form of a Share. Big integers and the scheme id
// are stored as byte strings.
type shareDocument struct {
	X            int    `cbor:"1,keyasint"`
	Y            []byte `cbor:"2,keyasint"`
	SchemeID     []byte `cbor:"3,keyasint"`
	Threshold    int    `cbor:"4,keyasint,omitempty"`
	Total        int    `cbor:"5,keyasint,omitempty"`
	Prime        []byte `cbor:"6,keyasint,omitempty"`
	SecretLength int    `cbor:"7,keyasint,omitempty"`
	Checksum     []byte `cbor:"8,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("secretsharing: invalid CBOR encoding options: %v", err))
	}
	cborEncMode = em
}

// MarshalShares serializes shares in the given format.
func MarshalShares(shares []Share, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(shares, "", "  ")
	case FormatCBOR:
		bundle := shareBundle{
			Version: documentVersion,
			Shares:  make([]shareDocument, len(shares)),
		}
		for i := range shares {
			bundle.Shares[i] = toDocument(&shares[i])
		}
		return cborEncMode.Marshal(bundle)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// UnmarshalShares parses shares serialized by MarshalShares. Checksums are
// not verified; call Share.Verify on the result.
func UnmarshalShares(data []byte, format Format) ([]Share, error) {
	switch format {
	case FormatJSON:
		var shares []Share
		if err := json.Unmarshal(data, &shares); err != nil {
			return nil, fmt.Errorf("failed to parse JSON shares: %w", err)
		}
		return shares, nil
	case FormatCBOR:
		var bundle shareBundle
		if err := cbor.Unmarshal(data, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse CBOR shares: %w", err)
		}
		if bundle.Version != documentVersion {
			return nil, fmt.Errorf("%w: CBOR document version %d", ErrUnsupportedFormat, bundle.Version)
		}
		shares := make([]Share, len(bundle.Shares))
		for i := range bundle.Shares {
			s, err := fromDocument(&bundle.Shares[i])
			if err != nil {
				return nil, fmt.Errorf("share %d: %w", i, err)
			}
			shares[i] = s
		}
		return shares, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func toDocument(s *Share) shareDocument {
	doc := shareDocument{
		X:            s.X,
		SchemeID:     s.SchemeID[:],
		Threshold:    s.Threshold,
		Total:        s.Total,
		SecretLength: s.SecretLength,
		Checksum:     s.Checksum,
	}
	if s.Y != nil {
		doc.Y = s.Y.Bytes()
	}
	if s.Prime != nil {
		doc.Prime = s.Prime.Bytes()
	}
	return doc
}

func fromDocument(doc *shareDocument) (Share, error) {
	id, err := uuid.FromBytes(doc.SchemeID)
	if err != nil {
		return Share{}, fmt.Errorf("%w: scheme id: %v", ErrInvalidShare, err)
	}
	s := Share{
		X:            doc.X,
		Y:            new(big.Int).SetBytes(doc.Y),
		SchemeID:     id,
		Threshold:    doc.Threshold,
		Total:        doc.Total,
		SecretLength: doc.SecretLength,
		Checksum:     doc.Checksum,
	}
	if len(doc.Prime) > 0 {
		s.Prime = new(big.Int).SetBytes(doc.Prime)
	}
	return s, nil
}
