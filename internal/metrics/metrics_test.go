package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestScanCounters(t *testing.T) {
	scans := ScansTotal.WithLabelValues("m_abcd", "cd", "DESC")
	keys := KeysScannedTotal.WithLabelValues("m_abcd", "cd")
	fetched := RowsFetchedTotal.WithLabelValues("m_abcd")

	ScanStarted("m_abcd", "cd", "DESC")
	ScanFinished("m_abcd", "cd", 4, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(scans))
	assert.Equal(t, 4.0, testutil.ToFloat64(keys))
	assert.Equal(t, 2.0, testutil.ToFloat64(fetched))
}

func TestDisabledRecordsNothing(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(true) })
	assert.False(t, Enabled())

	failures := HintFailuresTotal.WithLabelValues("m_disabled")
	HintFailed("m_disabled")
	ScanStarted("m_disabled", "primary", "ASC")

	assert.Equal(t, 0.0, testutil.ToFloat64(failures))
	assert.Equal(t, 0.0, testutil.ToFloat64(ScansTotal.WithLabelValues("m_disabled", "primary", "ASC")))
}
