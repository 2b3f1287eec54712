package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	brcache "github.com/radieske/bracket-bet-platform/internal/bracket-service/cache"
	brhttp "github.com/radieske/bracket-bet-platform/internal/bracket-service/http"
	"github.com/radieske/bracket-bet-platform/internal/bracket-service/repo"
	"github.com/radieske/bracket-bet-platform/internal/bracket-service/ws"
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// WebSocket de atualizações de chave alimentado pelo Redis Pub/Sub
	bcache := brcache.New(redisClient)
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, bcache)

	api := &brhttp.API{
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    bcache,
		CacheTTL: time.Duration(cfg.ProviderCacheTTLSec) * time.Second,
		WS:       hub.HandleWS,
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	httpSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: api.Router()}
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info("bracket-service stopped")
}
