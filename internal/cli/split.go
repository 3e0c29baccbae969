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
	"bytes"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/storage/file"
)

type splitOptions struct {
	in           string
	out          string
	dir          string
	stripNewline bool
}

func newSplitCmd(a *app) *cobra.Command {
	opts := &splitOptions{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into shares",
		Long: `Split reads a secret from --in or stdin and splits it into --shares
shares, any --threshold of which reconstruct it.

The secret is interpreted as a big-endian integer and must be smaller than
the prime. The default prime (p256) accepts secrets up to 31 bytes, and
mersenne521 up to 65 bytes.

Without --out or --dir the share document is written to stdout.`,
		Example: `  echo -n "hello" | sss split --threshold 3 --shares 6 --dir ./shares
  sss split --in key.bin --prime mersenne521 --format cbor --out shares.cbor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.in, "in", "", "read the secret from this file (default stdin)")
	flags.StringVar(&opts.out, "out", "", "write all shares to this file (default stdout)")
	flags.StringVar(&opts.dir, "dir", "", "write one document per share to <dir>/<scheme-id>/share-<x>.<format>")
	flags.BoolVar(&opts.stripNewline, "strip-newline", false, "remove trailing newlines from the secret")
	flags.String("prime", "", "prime modulus: decimal, 0x hex, mersenne127, mersenne521 or p256")
	flags.IntP("threshold", "k", 0, "number of shares required to reconstruct")
	flags.IntP("shares", "n", 0, "number of shares to create")
	flags.String("format", "", "share document format (json, cbor)")
	flags.String("seed", "", "derive coefficients deterministically from this seed (testing only)")
	cmd.MarkFlagsMutuallyExclusive("out", "dir")

	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, opts *splitOptions) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	d, release, err := newDealer(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	secret, err := readInput(cmd.InOrStdin(), opts.in)
	if err != nil {
		return err
	}
	if opts.stripNewline {
		secret = bytes.TrimRight(secret, "\r\n")
	}

	shares, err := d.Split(secret)
	if err != nil {
		_ = writeMetrics(cfg)
		return err
	}

	format := cfg.ShareFormat()
	result := &SplitResult{
		SchemeID:  shares[0].SchemeID.String(),
		Threshold: cfg.Scheme.Threshold,
		Total:     cfg.Scheme.Shares,
		PrimeBits: shares[0].Prime.BitLen(),
		Format:    string(format),
	}

	switch {
	case opts.dir != "":
		store, err := file.New(opts.dir, format)
		if err != nil {
			return err
		}
		defer store.Close()
		for _, share := range shares {
			if err := store.Save(share); err != nil {
				return err
			}
			result.Files = append(result.Files, store.Path(share.SchemeID, share.X))
		}
	default:
		data, err := secretsharing.MarshalShares(shares, format)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), opts.out, data); err != nil {
			return err
		}
		if opts.out == "" || opts.out == "-" {
			// stdout carries the document itself
			return writeMetrics(cfg)
		}
		result.Files = []string{opts.out}
	}

	if err := NewPrinter(a.outputFormat(), cmd.OutOrStdout()).PrintSplitResult(result); err != nil {
		return err
	}
	return writeMetrics(cfg)
}
