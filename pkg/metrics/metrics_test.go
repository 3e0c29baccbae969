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

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsEnabled(t *testing.T) {
	// Metrics should be enabled by default
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled by default")
	}

	Disable()
	if IsEnabled() {
		t.Error("Expected metrics to be disabled after Disable()")
	}

	Enable()
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled after Enable()")
	}
}

func TestRecordOperation(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	OperationDuration.Reset()

	RecordOperation(OpSplit, StatusSuccess, 0.002)

	if count := testutil.CollectAndCount(OperationsTotal); count != 1 {
		t.Errorf("Expected 1 operation recorded, got %d", count)
	}
	if histCount := testutil.CollectAndCount(OperationDuration); histCount != 1 {
		t.Errorf("Expected 1 histogram sample, got %d", histCount)
	}

	RecordOperation(OpCombine, StatusError, 0.001)
	RecordOperation(OpCombine, StatusError, 0.001)

	if count := testutil.CollectAndCount(OperationsTotal); count != 2 {
		t.Errorf("Expected 2 label sets, got %d", count)
	}
	if v := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, StatusError)); v != 2 {
		t.Errorf("Expected combine errors to be 2, got %v", v)
	}
}

func TestRecordOperationWhenDisabled(t *testing.T) {
	Disable()
	defer Enable()

	OperationsTotal.Reset()
	RecordOperation(OpSplit, StatusSuccess, 0.5)

	if count := testutil.CollectAndCount(OperationsTotal); count != 0 {
		t.Errorf("Expected 0 operations when disabled, got %d", count)
	}
}

func TestRecordError(t *testing.T) {
	Enable()
	ErrorsTotal.Reset()

	RecordError(OpCombine, "insufficient_shares")
	RecordError(OpCombine, "checksum_mismatch")

	if count := testutil.CollectAndCount(ErrorsTotal); count != 2 {
		t.Errorf("Expected 2 errors recorded, got %d", count)
	}
}

func TestRecordErrorWhenDisabled(t *testing.T) {
	Disable()
	defer Enable()

	ErrorsTotal.Reset()
	RecordError(OpCombine, "insufficient_shares")

	if count := testutil.CollectAndCount(ErrorsTotal); count != 0 {
		t.Errorf("Expected 0 errors when disabled, got %d", count)
	}
}

func TestRecordShares(t *testing.T) {
	Enable()
	SharesTotal.Reset()

	RecordShares(OpSplit, 5)
	RecordShares(OpSplit, 3)
	RecordShares(OpCombine, 0)

	if v := testutil.ToFloat64(SharesTotal.WithLabelValues(OpSplit)); v != 8 {
		t.Errorf("Expected 8 split shares, got %v", v)
	}
	if count := testutil.CollectAndCount(SharesTotal); count != 1 {
		t.Errorf("Expected zero counts to be skipped, got %d series", count)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "test_total",
		Help:      "test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "sss.prom")
	if err := WriteTextfileFrom(path, reg); err != nil {
		t.Fatalf("WriteTextfileFrom failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "sss_test_total 3") {
		t.Errorf("unexpected textfile contents:\n%s", data)
	}
}

func TestWriteTextfileDefaultGatherer(t *testing.T) {
	Enable()
	RecordOperation(OpSplit, StatusSuccess, 0.001)

	path := filepath.Join(t.TempDir(), "sss.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "sss_operations_total") {
		t.Errorf("expected sss_operations_total in textfile")
	}
}

func TestWriteTextfileErrors(t *testing.T) {
	if err := WriteTextfile(""); err == nil {
		t.Error("Expected error for empty path")
	}
	missing := filepath.Join(t.TempDir(), "missing", "dir", "sss.prom")
	if err := WriteTextfile(missing); err == nil {
		t.Error("Expected error for unwritable path")
	}
}

func TestMetricsNamespace(t *testing.T) {
	if Namespace != "sss" {
		t.Errorf("Expected namespace 'sss', got %q", Namespace)
	}
}
