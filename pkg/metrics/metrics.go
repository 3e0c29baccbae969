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

// Package metrics provides Prometheus instrumentation for secret sharing
// operations. Counters and histograms register with the default registry and
// can be exported to a node_exporter textfile after a one-shot CLI run.
package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all go-shamir metrics
	Namespace = "sss"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit   = "split"
	OpCombine = "combine"
	OpVerify  = "verify"
)

var (
	// OperationsTotal tracks the number of split, combine and verify operations by status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of secret sharing operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks operation latency in seconds. Large primes push
	// reconstruction into the millisecond range, so buckets start at 100µs.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of secret sharing operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal counts failures by operation and error type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of secret sharing errors by operation and type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// SharesTotal counts shares produced by split and consumed by combine.
	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_total",
			Help:      "Total number of shares produced or consumed",
		},
		[]string{LabelOperation},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	shares, err := d.Split(secret)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation(metrics.OpSplit, status, time.Since(start).Seconds())
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error event. errorType is a short identifier such
// as "insufficient_shares" or "checksum_mismatch".
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordShares adds count to the shares counter for operation.
func RecordShares(operation string, count int) {
	if !enabled.Load() || count <= 0 {
		return
	}
	SharesTotal.WithLabelValues(operation).Add(float64(count))
}

// WriteTextfile writes every metric in the default gatherer to path in the
// Prometheus text exposition format.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, prometheus.DefaultGatherer)
}

// WriteTextfileFrom writes the metrics from gatherer to path.
func WriteTextfileFrom(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return fmt.Errorf("metrics: textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
