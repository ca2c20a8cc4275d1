package metrics

import (
	"context"

	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/prometheus/client_golang/prometheus"
)

type Reporter struct {
	polls       *prometheus.CounterVec
	bytes       prometheus.Gauge
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

func NewReporter(reg prometheus.Registerer) (*Reporter, error) {
	r := &Reporter{
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "market_poller_polls_total", Help: "Account polls by outcome"},
			[]string{"outcome"},
		),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "market_poller_account_bytes",
			Help: "Size of the last successfully fetched account payload",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "market_poller_fetch_duration_seconds",
			Help:    "getAccountInfo round trip",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "market_poller_last_success_timestamp_seconds",
			Help: "Unix time of the last successful poll",
		}),
	}

	for _, c := range []prometheus.Collector{r.polls, r.bytes, r.duration, r.lastSuccess} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Reporter) Report(_ context.Context, res poller.Result) error {
	r.polls.WithLabelValues(res.Outcome.String()).Inc()
	r.duration.Observe(res.Duration.Seconds())

	if res.OK() {
		r.bytes.Set(float64(len(res.Data)))
		r.lastSuccess.Set(float64(res.FetchedAt.Unix()))
	}

	return nil
}
