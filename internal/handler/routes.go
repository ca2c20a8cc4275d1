package handler

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	ErrTimeout          = "request timed out"
	ErrSnapshotDisabled = "snapshot storage is not configured"
)

type RouteOptions struct {
	Status  *StatusReporter
	Redis   *redis.Client
	Address solana.PublicKey
	// nil serves the default registry
	Gatherer prometheus.Gatherer
}

func CreateRoutes(opts RouteOptions) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if opts.Status == nil {
		opts.Status = NewStatusReporter()
	}

	statusHandler := &statusHandler{reporter: opts.Status}
	snapshotHandler := &snapshotHandler{client: opts.Redis, address: opts.Address}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", statusHandler.Get)
	r.Get("/snapshot", snapshotHandler.Get)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
