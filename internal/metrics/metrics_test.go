package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	m := New()

	m.ObserveCommit("committed", 3*time.Millisecond)
	m.ObserveCommit("stale", time.Millisecond)
	m.ObserveCommit("stale", time.Millisecond)
	m.ObserveAllocation("best_fit", "booked")
	m.ObserveCheckIn("check_in")
	m.ObserveRetry()
	m.SetAlertingRooms(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitTotal.WithLabelValues("committed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.commitTotal.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocationTotal.WithLabelValues("best_fit", "booked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationRetries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.alertingRooms))
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.StreamOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.streamSubscribers))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.streamSubscribers))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveCheckIn("check_out")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `workspace_checkin_total{action="check_out"} 1`))
}
