package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/iqbalbaharum/market-account-poller/internal/adapter"
	"github.com/iqbalbaharum/market-account-poller/internal/config"
	"github.com/iqbalbaharum/market-account-poller/internal/handler"
	"github.com/iqbalbaharum/market-account-poller/internal/logger"
	"github.com/iqbalbaharum/market-account-poller/internal/metrics"
	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/iqbalbaharum/market-account-poller/internal/rpc"
	"github.com/iqbalbaharum/market-account-poller/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logConfig := &logger.Config{Level: cfg.LogLevel}
	lg, err := logConfig.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("Initialized ENVIRONMENT successfully",
		logger.String("rpc", cfg.RpcHttpUrl),
		logger.Stringer("account", cfg.MarketAccount),
		logger.Stringer("base_mint", cfg.BaseMint),
		logger.Stringer("quote_mint", cfg.QuoteMint),
		logger.Duration("interval", cfg.PollInterval))
	lg.Warn("no market layout decoder configured, reporting raw account size only")

	client := rpc.NewClient(cfg.RpcHttpUrl, cfg.RpcTimeout)
	probe(ctx, lg, client, cfg)

	status := handler.NewStatusReporter()
	reporters := []poller.Reporter{poller.NewLogReporter(lg), status}

	metricsReporter, err := metrics.NewReporter(prometheus.DefaultRegisterer)
	if err != nil {
		lg.Fatal("Failed to register metrics", logger.Error(err))
	}
	reporters = append(reporters, metricsReporter)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = adapter.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			lg.Fatal("Failed to initialize Redis client", logger.Error(err))
		}
		defer redisClient.Close()

		reporters = append(reporters, storage.NewSnapshotReporter(redisClient, cfg.BaseMint, cfg.QuoteMint))
	}

	var wake chan struct{}
	if cfg.RpcWsUrl != "" {
		wake = make(chan struct{}, 1)
		go subscribe(ctx, lg, cfg, wake)
	}

	if cfg.HttpPort > 0 {
		server := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.HttpPort),
			Handler: handler.CreateRoutes(handler.RouteOptions{
				Status:  status,
				Redis:   redisClient,
				Address: cfg.MarketAccount,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			lg.Info("server running", logger.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error("http server stopped", logger.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	p, err := poller.NewPoller(client, poller.Options{
		Address:    cfg.MarketAccount,
		Commitment: cfg.Commitment,
		Interval:   cfg.PollInterval,
		MaxBackoff: cfg.PollMaxBackoff,
		Reporters:  reporters,
		Wake:       wake,
		Logger:     lg,
	})
	if err != nil {
		lg.Fatal("Failed to create poller", logger.Error(err))
	}

	_ = p.Run(ctx)
	lg.Info("shutting down")
}

// probe logs endpoint reachability once. Failures are not fatal, the poll
// loop reports them on every iteration anyway.
func probe(ctx context.Context, lg *logger.Logger, client *rpc.Client, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(ctx, cfg.RpcTimeout)
	defer cancel()

	slot, err := client.GetSlot(ctx, cfg.Commitment)
	if err != nil {
		lg.Warn("rpc endpoint probe failed", logger.Error(err))
		return
	}

	balance, err := client.GetBalance(ctx, cfg.MarketAccount, cfg.Commitment)
	if err != nil {
		lg.Warn("account balance probe failed", logger.Error(err))
		return
	}

	lg.Info("rpc endpoint reachable", logger.Uint64("slot", slot), logger.Uint64("lamports", balance))
}

// subscribe keeps an accountSubscribe stream open and turns each notification
// into a wake signal, reconnecting after failures.
func subscribe(ctx context.Context, lg *logger.Logger, cfg *config.Config, wake chan<- struct{}) {
	for ctx.Err() == nil {
		ws, err := rpc.NewWsRpc(ctx, cfg.RpcWsUrl, lg)
		if err != nil {
			lg.Warn("websocket connect failed", logger.Error(err))
		} else {
			notifications := make(chan rpc.AccountNotification)
			done := make(chan error, 1)
			go func() {
				done <- ws.SubscribeToAccount(ctx, cfg.MarketAccount, cfg.Commitment, notifications)
			}()

			for n := range notifications {
				lg.Debug("account changed", logger.Uint64("slot", n.Slot))
				select {
				case wake <- struct{}{}:
				default:
				}
			}

			if err := <-done; err != nil && ctx.Err() == nil {
				lg.Warn("account subscription ended", logger.Error(err))
			}
			_ = ws.Close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.PollInterval):
		}
	}
}
