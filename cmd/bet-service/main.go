package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	bethttp "github.com/radieske/bracket-bet-platform/internal/bet-service/http"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/producer"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/repo"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/session"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/wallet"
	"github.com/radieske/bracket-bet-platform/internal/shared/config"
	"github.com/radieske/bracket-bet-platform/internal/shared/db"
	"github.com/radieske/bracket-bet-platform/internal/shared/kafka"
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

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicBetPlaced))

	walletURL := os.Getenv("WALLET_URL")
	if walletURL == "" {
		walletURL = "http://localhost:8082"
	}

	store := repo.NewPostgres(pg)
	sessions := session.NewManager(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	pub := producer.NewKafkaPublisher(writer, cfg.TopicBetPlaced)
	srv := bethttp.NewServer(log, store, sessions, wallet.New(walletURL), pub)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Varredura periódica de sessões abandonadas.
	go sessions.Sweep(ctx, time.Minute)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	httpSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: srv.Router()}
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
	log.Info("bet-service stopped")
}
