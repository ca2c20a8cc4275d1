package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = solana.MustPublicKeyFromBase58("GQsPr4RJk9AZkkfWHud7v4MtotcxhaYzZHdsPCg9vNvW")

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r := CreateRoutes(RouteOptions{Address: testAccount})

	rec := get(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	status := NewStatusReporter()
	r := CreateRoutes(RouteOptions{Status: status, Address: testAccount})

	rec := get(t, r, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending")

	fetchedAt := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, status.Report(context.Background(), poller.Result{
		Outcome:   poller.OutcomeSuccess,
		Address:   testAccount,
		Data:      make([]byte, 1544),
		Slot:      311000111,
		FetchedAt: fetchedAt,
		Duration:  120 * time.Millisecond,
	}))

	rec = get(t, r, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testAccount.String(), body["address"])
	assert.Equal(t, "success", body["outcome"])
	assert.EqualValues(t, 1544, body["bytes"])
	assert.EqualValues(t, 311000111, body["slot"])
	assert.EqualValues(t, 120, body["tookMs"])
	assert.NotContains(t, body, "error")

	require.NoError(t, status.Report(context.Background(), poller.Result{
		Outcome: poller.OutcomeTransportError,
		Address: testAccount,
		Err:     errors.New("i/o timeout"),
	}))

	rec = get(t, r, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"transport_error"`)
	assert.Contains(t, rec.Body.String(), "i/o timeout")
}

func TestSnapshot_Disabled(t *testing.T) {
	r := CreateRoutes(RouteOptions{Address: testAccount})

	rec := get(t, r, "/snapshot")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrSnapshotDisabled)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_poller_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	r := CreateRoutes(RouteOptions{Address: testAccount, Gatherer: reg})

	rec := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "market_poller_test_total 1"))
}
