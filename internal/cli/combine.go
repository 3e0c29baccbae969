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
	"fmt"

	"github.com/spf13/cobra"
)

type combineOptions struct {
	out string
	shareSource
}

// shareSource selects a share directory written by split --dir
type shareSource struct {
	dir    string
	scheme string
}

func (s *shareSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dir, "dir", "", "read shares from a directory written by split --dir")
	cmd.Flags().StringVar(&s.scheme, "scheme", "", "scheme id to read from --dir (default: the only scheme)")
}

func newCombineCmd(a *app) *cobra.Command {
	opts := &combineOptions{}

	cmd := &cobra.Command{
		Use:   "combine [share-file...]",
		Short: "Reconstruct a secret from shares",
		Long: `Combine reads share documents from the given files, or from stdin when
none are given, and reconstructs the secret.

The format of each file is taken from its extension (.json or .cbor) and
otherwise from --format. All shares must come from the same split, and
every share beyond the threshold must agree with the others.`,
		Example: `  sss combine shares/<scheme-id>/share-1.json shares/<scheme-id>/share-3.json
  sss combine --dir shares --out key.bin
  sss combine --format cbor < shares.cbor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombine(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "write the secret to this file (default stdout)")
	cmd.Flags().String("format", "", "share document format for stdin and unknown extensions (json, cbor)")
	opts.addFlags(cmd)

	return cmd
}

func (a *app) runCombine(cmd *cobra.Command, args []string, opts *combineOptions) error {
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

	shares, err := loadShares(cmd.InOrStdin(), args, opts.dir, opts.scheme, cfg.ShareFormat())
	if err != nil {
		return err
	}

	secret, err := d.Combine(shares)
	if err != nil {
		_ = writeMetrics(cfg)
		return err
	}

	printer := NewPrinter(a.outputFormat(), cmd.OutOrStdout())
	if opts.out != "" && opts.out != "-" {
		if err := writeOutput(nil, opts.out, secret); err != nil {
			return err
		}
		if err := printer.PrintSuccess(fmt.Sprintf("Secret (%d bytes) written to %s", len(secret), opts.out)); err != nil {
			return err
		}
	} else if err := printer.PrintSecret(secret); err != nil {
		return err
	}

	return writeMetrics(cfg)
}

func newVerifyCmd(a *app) *cobra.Command {
	src := &shareSource{}

	cmd := &cobra.Command{
		Use:   "verify [share-file...]",
		Short: "Check shares without reconstructing the secret",
		Long: `Verify runs every check combine does on the given shares: checksums,
scheme agreement, duplicate indices, the threshold and the consistency of
surplus shares. The secret is never reconstructed or printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			shares, err := loadShares(cmd.InOrStdin(), args, src.dir, src.scheme, cfg.ShareFormat())
			if err != nil {
				return err
			}

			if err := d.Verify(shares); err != nil {
				_ = writeMetrics(cfg)
				return err
			}

			msg := fmt.Sprintf("%d shares verified for scheme %s (threshold %d)",
				len(shares), shares[0].SchemeID, shares[0].Threshold)
			if err := NewPrinter(a.outputFormat(), cmd.OutOrStdout()).PrintSuccess(msg); err != nil {
				return err
			}
			return writeMetrics(cfg)
		},
	}

	cmd.Flags().String("format", "", "share document format for stdin and unknown extensions (json, cbor)")
	src.addFlags(cmd)

	return cmd
}
