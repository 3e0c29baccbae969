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

package secretsharing_test

import (
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
)

// ExampleNewScheme demonstrates splitting an integer secret and recovering
// it from a subset of the shares.
func ExampleNewScheme() {
	prime := big.NewInt(1613)

	// Any 3 of the 6 shares reconstruct the secret
	scheme, err := secretsharing.NewScheme(big.NewInt(1234), 6, 3, prime)
	if err != nil {
		log.Fatal(err)
	}

	shares := scheme.ConstructShares()
	fmt.Printf("Secret split into %d shares\n", len(shares))

	secret, err := secretsharing.ReconstructSecret(
		[]secretsharing.Share{shares[1], shares[3], shares[5]}, prime, 3)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Reconstructed:", secret)

	// Output:
	// Secret split into 6 shares
	// Reconstructed: 1234
}

// ExampleReconstructSecret reconstructs a secret from known shares.
func ExampleReconstructSecret() {
	shares := []secretsharing.Share{
		{X: 1, Y: big.NewInt(1494)},
		{X: 2, Y: big.NewInt(329)},
		{X: 3, Y: big.NewInt(965)},
	}

	secret, err := secretsharing.ReconstructSecret(shares, big.NewInt(1613), 3)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(secret)

	// Output: 1234
}

// ExampleReconstructSecret_insufficientShares shows the threshold boundary.
func ExampleReconstructSecret_insufficientShares() {
	shares := []secretsharing.Share{
		{X: 1, Y: big.NewInt(1494)},
		{X: 2, Y: big.NewInt(329)},
	}

	_, err := secretsharing.ReconstructSecret(shares, big.NewInt(1613), 3)
	fmt.Println(errors.Is(err, secretsharing.ErrInsufficientShares))
	fmt.Println(err)

	// Output:
	// true
	// insufficient shares: have 2, need 3
}
