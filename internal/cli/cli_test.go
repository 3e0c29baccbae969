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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-shamir/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-shamir/pkg/storage"
)

// execute runs the sss command tree with args and returns stdout
func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSplitCombine_Directory(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, []byte("hello"),
		"split", "--threshold", "3", "--shares", "6", "--prime", "mersenne127",
		"--seed", "dir test", "--dir", dir, "-o", "json")
	require.NoError(t, err)

	var result SplitResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Threshold)
	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 127, result.PrimeBits)
	require.Len(t, result.Files, 6)

	for x, path := range result.Files {
		assert.Equal(t, filepath.Join(dir, result.SchemeID, fmt.Sprintf("share-%d.json", x+1)), path)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	secret, err := execute(t, nil, "combine", result.Files[1], result.Files[3], result.Files[5])
	require.NoError(t, err)
	assert.Equal(t, "hello", secret)

	_, err = execute(t, nil, "combine", result.Files[0], result.Files[4])
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientShares)

	secret, err = execute(t, nil, "combine", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "hello", secret)

	out, err = execute(t, nil, "verify", "--dir", dir, "--scheme", result.SchemeID)
	require.NoError(t, err)
	assert.Contains(t, out, "6 shares verified")
}

func TestCombine_DirectoryErrors(t *testing.T) {
	dir := t.TempDir()
	for _, seed := range []string{"first", "second"} {
		_, err := execute(t, []byte("two splits"), "split", "-k", "2", "-n", "2", "--seed", seed, "--dir", dir)
		require.NoError(t, err)
	}

	_, err := execute(t, nil, "combine", "--dir", dir)
	assert.ErrorIs(t, err, storage.ErrAmbiguousScheme)

	_, err = execute(t, nil, "combine", "--dir", dir, "--scheme", "not-a-uuid")
	assert.Error(t, err)

	_, err = execute(t, nil, "combine", "--dir", dir, "--scheme", uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = execute(t, nil, "combine", "--dir", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = execute(t, nil, "combine", "--dir", dir, "share-1.json")
	assert.Error(t, err)
}

func TestSplitCombine_Stdio(t *testing.T) {
	doc, err := execute(t, []byte("correct horse\n"),
		"split", "-k", "2", "-n", "3", "--strip-newline")
	require.NoError(t, err)

	shares, err := secretsharing.UnmarshalShares([]byte(doc), secretsharing.FormatJSON)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, len("correct horse"), shares[0].SecretLength)

	secret, err := execute(t, []byte(doc), "combine")
	require.NoError(t, err)
	assert.Equal(t, "correct horse", secret)
}

func TestSplitCombine_CBORFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.cbor")

	_, err := execute(t, []byte{0x00, 0x01, 0xff},
		"split", "-k", "2", "-n", "4", "--format", "cbor", "--out", path)
	require.NoError(t, err)

	out, err := execute(t, nil, "combine", "-o", "json", path)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "0001ff", result["hex"])
	assert.EqualValues(t, 3, result["length"])
	assert.NotContains(t, result, "secret")
}

func TestCombine_OutFile(t *testing.T) {
	dir := t.TempDir()
	doc, err := execute(t, []byte("to a file"), "split", "-k", "2", "-n", "2")
	require.NoError(t, err)

	target := filepath.Join(dir, "secret.bin")
	out, err := execute(t, []byte(doc), "combine", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "written to")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "to a file", string(data))
}

func TestSplit_DeterministicSeed(t *testing.T) {
	a, err := execute(t, []byte("seeded"), "split", "--seed", "fixed")
	require.NoError(t, err)
	b, err := execute(t, []byte("seeded"), "split", "--seed", "fixed")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCombine_Rejections(t *testing.T) {
	first, err := execute(t, []byte("one"), "split", "-k", "2", "-n", "3", "--seed", "first")
	require.NoError(t, err)
	second, err := execute(t, []byte("one"), "split", "-k", "2", "-n", "3", "--seed", "second")
	require.NoError(t, err)

	a, err := secretsharing.UnmarshalShares([]byte(first), secretsharing.FormatJSON)
	require.NoError(t, err)
	b, err := secretsharing.UnmarshalShares([]byte(second), secretsharing.FormatJSON)
	require.NoError(t, err)

	marshal := func(shares []secretsharing.Share) []byte {
		data, err := secretsharing.MarshalShares(shares, secretsharing.FormatJSON)
		require.NoError(t, err)
		return data
	}

	t.Run("mixed splits", func(t *testing.T) {
		_, err := execute(t, marshal([]secretsharing.Share{a[0], b[1]}), "combine")
		assert.ErrorIs(t, err, secretsharing.ErrSchemeMismatch)
	})

	t.Run("tampered value", func(t *testing.T) {
		tampered := a[1].Clone()
		tampered.Y.Add(tampered.Y, big.NewInt(1))
		_, err := execute(t, marshal([]secretsharing.Share{a[0], tampered}), "combine")
		assert.ErrorIs(t, err, secretsharing.ErrChecksumMismatch)
	})

	t.Run("not a share document", func(t *testing.T) {
		_, err := execute(t, []byte("{"), "combine")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stdin")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, nil, "combine", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	doc, err := execute(t, []byte("verify"), "split", "-k", "2", "-n", "4", "--seed", "verify")
	require.NoError(t, err)

	out, err := execute(t, []byte(doc), "verify", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "success"`)
	assert.Contains(t, out, "4 shares verified")

	shares, err := secretsharing.UnmarshalShares([]byte(doc), secretsharing.FormatJSON)
	require.NoError(t, err)
	shares[3].Y.Add(shares[3].Y, big.NewInt(1))
	shares[3].Y.Mod(shares[3].Y, shares[3].Prime)
	shares[3].Seal()
	data, err := secretsharing.MarshalShares(shares, secretsharing.FormatJSON)
	require.NoError(t, err)

	_, err = execute(t, data, "verify")
	assert.ErrorIs(t, err, secretsharing.ErrConsistency)
}

func TestSplit_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
	}{
		{"threshold above shares", []string{"split", "-k", "5", "-n", "3"}, "x"},
		{"composite prime", []string{"split", "--prime", "1612"}, "x"},
		{"unknown format", []string{"split", "--format", "xml"}, "x"},
		{"secret too large", []string{"split", "--prime", "1613"}, "ab"},
		{"empty secret", []string{"split"}, ""},
		{"out and dir", []string{"split", "--out", "a", "--dir", "b"}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, []byte(tt.in), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSplit_ConfigFileAndMetrics(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "sss.prom")
	configPath := filepath.Join(dir, "sss.yaml")
	content := `
scheme:
  prime: mersenne127
  threshold: 2
  shares: 3
logging:
  level: error
metrics:
  enabled: true
  textfile: ` + textfile + `
output:
  format: cbor
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	doc, err := execute(t, []byte("metered"), "--config", configPath, "split")
	require.NoError(t, err)

	shares, err := secretsharing.UnmarshalShares([]byte(doc), secretsharing.FormatCBOR)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, 127, shares[0].Prime.BitLen())

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sss_operations_total")
	assert.Contains(t, string(data), `operation="split"`)
}

func TestRootFlags(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, []byte("x"), "--config", filepath.Join(dir, "nope.yaml"),
			"split", "-k", "2", "-n", "3", "--dir", dir)
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("verbose logs at debug", func(t *testing.T) {
		doc, err := execute(t, []byte("x"), "split", "-k", "2", "-n", "2")
		require.NoError(t, err)

		cmd := NewRootCmd()
		var out, errOut bytes.Buffer
		cmd.SetIn(strings.NewReader(doc))
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"verify", "-v"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, errOut.String(), "level=DEBUG")
		assert.Contains(t, errOut.String(), "shares verified")
	})
}

func TestSplit_InvalidOutputWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{name: "flag", args: []string{"-o", "yaml"}},
		{name: "env", env: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv(EnvPrefix+"_OUTPUT", tt.env)
			}
			dir := t.TempDir()
			args := append([]string{"split", "-k", "2", "-n", "3", "--dir", dir}, tt.args...)
			_, err := execute(t, []byte("orphan"), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid output format")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sss version "+Version))

	out, err = execute(t, nil, "version", "--output", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestOutputFormatFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"combine"}, "text"},
		{[]string{"combine", "-o", "json"}, "json"},
		{[]string{"--output", "json", "split"}, "json"},
		{[]string{"split", "--output=json"}, "json"},
		{[]string{"split", "-o"}, "text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputFormatFromArgs(tt.args), "%v", tt.args)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter("json", &buf)
	require.NoError(t, p.PrintSecret([]byte("hi")))
	assert.Contains(t, buf.String(), `"secret": "hi"`)

	buf.Reset()
	require.NoError(t, p.PrintError(errors.New("boom")))
	assert.Contains(t, buf.String(), `"error": "boom"`)

	buf.Reset()
	p = NewPrinter("text", &buf)
	require.NoError(t, p.PrintSecret([]byte{0x00, 0x01}))
	assert.Equal(t, []byte{0x00, 0x01}, buf.Bytes())

	buf.Reset()
	p = NewPrinter("", &buf)
	require.NoError(t, p.PrintSuccess("defaults to text"))
	assert.Equal(t, "defaults to text\n", buf.String())

	p = NewPrinter("yaml", &buf)
	assert.Error(t, p.PrintSecret([]byte("x")))
	assert.Error(t, p.PrintSuccess("x"))
	assert.Error(t, p.PrintSplitResult(&SplitResult{}))
	assert.NoError(t, p.PrintError(errors.New("still printed")))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.OutputFormat != "text" {
		t.Errorf("OutputFormat = %v, want text", cfg.OutputFormat)
	}
	if cfg.Verbose {
		t.Error("Verbose should be false by default")
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile should be empty by default, got %v", cfg.ConfigFile)
	}
}
