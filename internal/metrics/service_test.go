package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := metrics.NewService(reg)

	svc.IncOperation("add_team")
	svc.IncOperation("add_team")
	svc.IncRejection("add_match", "DuplicateMatch")
	svc.IncMatchesApplied(3)
	svc.IncPeriodsFinalized()
	svc.ObserveRatingDelta(-33.3)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.Operations.WithLabelValues("add_team")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Rejections.WithLabelValues("add_match", "DuplicateMatch")))
	assert.Equal(t, 3.0, testutil.ToFloat64(svc.MatchesApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.PeriodsFinalized))
	assert.Equal(t, 1, testutil.CollectAndCount(svc.RatingDelta))
}

func TestMetricsHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := metrics.NewService(reg)
	svc.IncPeriodsFinalized()

	rr := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	metrics.NewMetricsHandler(reg).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ladder_periods_finalized_total 1")
}
