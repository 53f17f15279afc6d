// Package metrics exposes scan counters through the default Prometheus
// registry.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts index scans by table, index and direction.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idxscan_scans_total",
			Help: "Total number of index scans",
		},
		[]string{"table", "index", "direction"},
	)
	// KeysScannedTotal counts index entries read by scans.
	KeysScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idxscan_keys_scanned_total",
			Help: "Total number of index entries visited",
		},
		[]string{"table", "index"},
	)
	// RowsFetchedTotal counts rows fetched through a primary-key back-reference.
	RowsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idxscan_rows_fetched_total",
			Help: "Total number of rows fetched by non-covering scans",
		},
		[]string{"table"},
	)
	// HintFailuresTotal counts table references rejected before scanning.
	HintFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idxscan_hint_failures_total",
			Help: "Total number of index hints that failed to parse or resolve",
		},
		[]string{"reason"},
	)
)

var disabled atomic.Bool

// SetEnabled turns recording on or off. Recording is on by default.
func SetEnabled(on bool) {
	disabled.Store(!on)
}

// Enabled reports whether counters are being recorded
func Enabled() bool {
	return !disabled.Load()
}

// ScanStarted records one scan
func ScanStarted(table, index, direction string) {
	if disabled.Load() {
		return
	}
	ScansTotal.WithLabelValues(table, index, direction).Inc()
}

// ScanFinished records the work a scan did
func ScanFinished(table, index string, keys, fetched int) {
	if disabled.Load() {
		return
	}
	KeysScannedTotal.WithLabelValues(table, index).Add(float64(keys))
	RowsFetchedTotal.WithLabelValues(table).Add(float64(fetched))
}

// HintFailed records a rejected hint. reason is "syntax" or "not_found".
func HintFailed(reason string) {
	if disabled.Load() {
		return
	}
	HintFailuresTotal.WithLabelValues(reason).Inc()
}
