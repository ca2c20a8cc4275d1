package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewReporter(reg)
	require.NoError(t, err)

	fetchedAt := time.Unix(1735689600, 0)
	ctx := context.Background()
	require.NoError(t, r.Report(ctx, poller.Result{Outcome: poller.OutcomeSuccess, Data: make([]byte, 1544), FetchedAt: fetchedAt, Duration: 80 * time.Millisecond}))
	require.NoError(t, r.Report(ctx, poller.Result{Outcome: poller.OutcomeTransportError}))
	require.NoError(t, r.Report(ctx, poller.Result{Outcome: poller.OutcomeTransportError}))
	require.NoError(t, r.Report(ctx, poller.Result{Outcome: poller.OutcomeNotFound}))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.polls.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.polls.WithLabelValues("transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.polls.WithLabelValues("not_found")))
	assert.Equal(t, 1544.0, testutil.ToFloat64(r.bytes))
	assert.Equal(t, float64(fetchedAt.Unix()), testutil.ToFloat64(r.lastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestNewReporter_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewReporter(reg)
	require.NoError(t, err)

	_, err = NewReporter(reg)
	assert.Error(t, err)
}
