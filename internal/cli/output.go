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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer. An empty format selects text.
func NewPrinter(format string, writer io.Writer) *Printer {
	if format == "" {
		format = string(OutputFormatText)
	}
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// SplitResult summarizes a split for display
type SplitResult struct {
	SchemeID  string   `json:"scheme_id"`
	Threshold int      `json:"threshold"`
	Total     int      `json:"total"`
	PrimeBits int      `json:"prime_bits"`
	Format    string   `json:"format"`
	Files     []string `json:"files"`
}

// PrintSplitResult prints where the shares of a split were written
func (p *Printer) PrintSplitResult(r *SplitResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Scheme:    %s\n", r.SchemeID)
		fmt.Fprintf(p.writer, "Threshold: %d of %d\n", r.Threshold, r.Total)
		fmt.Fprintf(p.writer, "Prime:     %d bits\n", r.PrimeBits)
		fmt.Fprintf(p.writer, "Format:    %s\n", r.Format)
		fmt.Fprintln(p.writer, "Files:")
		for _, f := range r.Files {
			fmt.Fprintf(p.writer, "  - %s\n", f)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecret prints a reconstructed secret. Text output writes the raw
// bytes unchanged.
func (p *Printer) PrintSecret(secret []byte) error {
	switch p.format {
	case OutputFormatJSON:
		out := map[string]interface{}{
			"length": len(secret),
			"hex":    hex.EncodeToString(secret),
		}
		if utf8.Valid(secret) {
			out["secret"] = string(secret)
		}
		return p.printJSON(out)
	case OutputFormatText:
		_, err := p.writer.Write(secret)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
