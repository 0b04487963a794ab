package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/models"
)

func TestObserveCycle(t *testing.T) {
	m := New()

	m.ObserveCycle("g1", CycleStats{
		Status:    models.StatusConflictsDetected,
		Duration:  150 * time.Millisecond,
		Pulled:    3,
		Pushed:    2,
		Applied:   1,
		Conflicts: 1,
	})
	m.ObserveCycle("g1", CycleStats{Status: models.StatusOffline})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("CONFLICTS_DETECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("OFFLINE")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.entries.WithLabelValues("pulled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entries.WithLabelValues("pushed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
	assert.Positive(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("g1")))

	m.RemoteRetry("put")
	m.ManifestConflict()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteRetries.WithLabelValues("put")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.manifestConflicts))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCycle("g1", CycleStats{Status: models.StatusError})
		m.RemoteRetry("get")
		m.ManifestConflict()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCycle("g1", CycleStats{Status: models.StatusUpToDate})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bandsync_sync_cycles_total{status="UP_TO_DATE"} 1`)
}
