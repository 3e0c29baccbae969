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

// Package secretsharing implements Shamir's Secret Sharing Scheme over a
// prime field GF(p).
//
// Shamir's Secret Sharing divides a secret into N shares, where any K shares
// (the threshold) reconstruct the original secret, but K-1 or fewer shares
// reveal no information about it.
//
// # Mathematical Foundation
//
// The secret S is the constant term of a random polynomial of degree K-1:
//
//	f(x) = S + c1*x + c2*x^2 + ... + c(K-1)*x^(K-1)  (mod p)
//
// The coefficients c1 through c(K-1) are drawn uniformly from [1, p-1] and
// share i is the point (i, f(i)) for i = 1..N. Any K points determine f
// uniquely, so the secret is recovered by Lagrange interpolation at x = 0.
//
// All arithmetic is exact modular arithmetic on big integers. Division uses
// the modular inverse computed by the extended Euclidean algorithm (see
// package field).
//
// # Parameters
//
//   - 1 <= K <= N
//   - p must be prime, p > N and p > S
//
// A secret that is not strictly less than p is rejected by NewScheme rather
// than being silently reduced modulo p.
//
// # Usage Example
//
//	prime := big.NewInt(1613)
//	scheme, err := secretsharing.NewScheme(big.NewInt(1234), 6, 3, prime)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	shares := scheme.ConstructShares()
//
//	// Later, reconstruct with any 3 shares
//	secret, err := secretsharing.ReconstructSecret(
//	    []secretsharing.Share{shares[0], shares[2], shares[5]}, prime, 3)
//
// # Error Handling
//
// Reconstruction is all-or-nothing. Errors wrap one of the sentinel values
// below and can be inspected with errors.Is or errors.As:
//
//   - ErrInvalidParameters: bad N, K, p or secret
//   - ErrInsufficientShares: fewer than K shares (*InsufficientSharesError)
//   - ErrDuplicateShareIndex: two shares with the same x (*DuplicateShareIndexError)
//   - ErrConsistency: surplus shares disagree with the interpolated polynomial (*ConsistencyError)
//
// # Share Documents
//
// Shares produced by ConstructShares carry the scheme id, threshold, total
// and prime together with a BLAKE3 checksum, and can be serialized as JSON
// or CBOR with MarshalShares.
//
// # References
//
// - Shamir, Adi (1979). "How to Share a Secret"
package secretsharing
