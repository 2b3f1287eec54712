package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bracket-sync-worker/provider"
	"github.com/radieske/bracket-bet-platform/internal/bracket-sync-worker/pubsub"
	"github.com/radieske/bracket-bet-platform/internal/bracket-sync-worker/repo"
	"github.com/radieske/bracket-bet-platform/internal/bracket-sync-worker/service"
	"github.com/radieske/bracket-bet-platform/internal/shared/cache"
	"github.com/radieske/bracket-bet-platform/internal/shared/config"
	"github.com/radieske/bracket-bet-platform/internal/shared/db"
	"github.com/radieske/bracket-bet-platform/internal/shared/logger"
	"github.com/radieske/bracket-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Métricas Prometheus para monitoramento da sincronização
	synced := prometheus.NewCounter(prometheus.CounterOpts{Name: "bracket_sync_tournaments_total", Help: "torneios sincronizados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bracket_sync_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(synced, errorsBy)

	client := provider.NewClient(cfg.BracketAPIURL, cfg.BracketAPIKey, redisClient,
		time.Duration(cfg.ProviderCacheTTLSec)*time.Second)

	sync := &service.Sync{
		Log:       log,
		Provider:  client,
		Store:     repo.NewPostgres(pg),
		Publisher: pubsub.NewRedisPublisher(redisClient, cfg.RedisPubSubChannel),
		OnSynced:  func() { synced.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.SyncIntervalSec) * time.Second
	log.Info("bracket-sync-worker started", zap.Duration("interval", interval))
	sync.Run(ctx, interval)
	log.Info("bracket-sync-worker stopped")
}
