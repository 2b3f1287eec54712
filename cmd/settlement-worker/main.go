package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/settlement-worker/engine"
	"github.com/radieske/bracket-bet-platform/internal/settlement-worker/notifier"
	"github.com/radieske/bracket-bet-platform/internal/settlement-worker/repo"
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

	usersW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicUserNotifications)
	defer usersW.Close()
	broadcastW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBroadcastNotifications)
	defer broadcastW.Close()
	settledW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTournamentSettled)
	defer settledW.Close()

	// Métricas Prometheus para monitoramento da liquidação
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_tournaments_settled_total", Help: "torneios liquidados"})
	voided := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_predictions_voided_total", Help: "predições anuladas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(settled, voided, errorsBy)

	store := repo.NewPostgres(pg)
	sink := notifier.NewKafka(usersW, broadcastW, settledW)
	eng := &engine.Engine{
		Log:         log,
		Tournaments: store,
		Bets:        store,
		Ledger:      store,
		Sink:        sink,
		Publisher:   sink,
		OnSettled:   func() { settled.Inc() },
		OnVoided:    func() { voided.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.SettleIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("settlement-worker started", zap.Duration("interval", interval))
	for {
		if err := eng.RunPass(ctx); err != nil && ctx.Err() == nil {
			log.Error("settlement pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("settlement-worker stopped")
			return
		case <-ticker.C:
		}
	}
}
