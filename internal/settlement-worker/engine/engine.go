package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/internal/quotes"
	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

// TournamentStore é a leitura do estado sincronizado dos torneios.
type TournamentStore interface {
	FinishedUnsettled(ctx context.Context) ([]bracket.Tournament, error)
	MatchesOf(ctx context.Context, tournamentID string) ([]bracket.Match, error)
	PlayersOf(ctx context.Context, tournamentID string) (map[string]string, error)
}

// BetStore é a leitura de apostas, predições e cotações persistidas.
type BetStore interface {
	BetsForTournament(ctx context.Context, tournamentID string) ([]Bet, error)
	PredictionsForTournament(ctx context.Context, tournamentID string) ([]Prediction, error)
	QuotesForTournament(ctx context.Context, tournamentID string) ([]quotes.Entry, error)
}

// LedgerStore aplica os ajustes de saldo. ApplySettlement precisa ser
// atômico com o latch outcome_computed: devolve false quando o torneio
// já foi liquidado (segunda chamada vira no-op).
type LedgerStore interface {
	ApplySettlement(ctx context.Context, tournamentID string, deltas map[string]float64) (bool, error)
}

// NotificationSink entrega mensagens de liquidação. Fire-and-forget, sem
// garantia de entrega.
type NotificationSink interface {
	SendToUser(ctx context.Context, userID, text string) error
	BroadcastToGroups(ctx context.Context, text string) error
}

// EventPublisher publica o evento de liquidação concluída.
type EventPublisher interface {
	PublishTournamentSettled(ctx context.Context, e events.TournamentSettled) error
}

// Engine liquida torneios finalizados. Cada passe processa todos os
// torneios finalizados e não liquidados; falha em um torneio não
// interrompe os demais.
type Engine struct {
	Log         *zap.Logger
	Tournaments TournamentStore
	Bets        BetStore
	Ledger      LedgerStore
	Sink        NotificationSink
	Publisher   EventPublisher // opcional

	OnSettled func()       // métricas (counter++)
	OnVoided  func()       // métricas
	OnError   func(string) // métricas por fase
}

// RunPass processa todos os torneios elegíveis. Erros por torneio são
// isolados: logados, contados e reavaliados no próximo passe.
func (e *Engine) RunPass(ctx context.Context) error {
	ts, err := e.Tournaments.FinishedUnsettled(ctx)
	if err != nil {
		e.fail("list", err)
		return err
	}

	for _, t := range ts {
		if err := e.settleOne(ctx, t); err != nil {
			var incomplete *IncompleteResultError
			var missing *quotes.MissingQuoteError
			if errors.As(err, &incomplete) || errors.As(err, &missing) {
				// Inconsistência de dados: pula sem setar o latch,
				// visível só para o operador.
				e.Log.Warn("settlement skipped, data inconsistency",
					zap.String("tournamentId", t.ID),
					zap.String("tournament", t.Name),
					zap.Error(err))
				e.fail("data_inconsistency", nil)
				continue
			}
			e.Log.Error("settlement failed",
				zap.String("tournamentId", t.ID),
				zap.Error(err))
			e.fail("settle", nil)
			continue
		}
	}
	return nil
}

func (e *Engine) settleOne(ctx context.Context, t bracket.Tournament) error {
	matchList, err := e.Tournaments.MatchesOf(ctx, t.ID)
	if err != nil {
		return err
	}
	matches := make(map[string]bracket.Match, len(matchList))
	for _, m := range matchList {
		matches[m.ID] = m
	}

	bets, err := e.Bets.BetsForTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	preds, err := e.Bets.PredictionsForTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	entries, err := e.Bets.QuotesForTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	book, err := quotes.NewBook(entries)
	if err != nil {
		return err
	}

	res, err := Compute(bets, preds, matches, book)
	if err != nil {
		return err
	}

	// Latch + saldos em uma transação só: at-most-once mesmo com retry.
	applied, err := e.Ledger.ApplySettlement(ctx, t.ID, res.Deltas)
	if err != nil {
		return err
	}
	if !applied {
		e.Log.Info("tournament already settled, skipping",
			zap.String("tournamentId", t.ID))
		return nil
	}

	e.Log.Info("tournament settled",
		zap.String("tournamentId", t.ID),
		zap.String("tournament", t.Name),
		zap.Int("users", len(res.Deltas)),
		zap.Int("predictions", len(res.Items)),
		zap.Int("voided", res.Voided))

	if e.OnSettled != nil {
		e.OnSettled()
	}
	if e.OnVoided != nil {
		for i := 0; i < res.Voided; i++ {
			e.OnVoided()
		}
	}

	e.notify(ctx, t, res, entries)

	if e.Publisher != nil {
		_ = e.Publisher.PublishTournamentSettled(ctx, events.TournamentSettled{
			TournamentID: t.ID,
			Name:         t.Name,
			Users:        len(res.Deltas),
			Predictions:  len(res.Items),
			Ts:           time.Now(),
		})
	}
	return nil
}

// notify compõe e envia as mensagens de liquidação. Entrega é melhor
// esforço: falha vira log, nunca erro de liquidação.
func (e *Engine) notify(ctx context.Context, t bracket.Tournament, res *Result, entries []quotes.Entry) {
	names, err := e.Tournaments.PlayersOf(ctx, t.ID)
	if err != nil {
		e.Log.Warn("player names unavailable, using ids", zap.Error(err))
		names = map[string]string{}
	}

	for userID, text := range UserMessages(t.Name, names, res) {
		if err := e.Sink.SendToUser(ctx, userID, text); err != nil {
			e.Log.Warn("user notification failed", zap.String("userId", userID), zap.Error(err))
		}
	}

	if err := e.Sink.BroadcastToGroups(ctx, QuoteSummary(t.Name, names, entries)); err != nil {
		e.Log.Warn("broadcast failed", zap.Error(err))
	}
}

func (e *Engine) fail(stage string, err error) {
	if e.OnError != nil {
		e.OnError(stage)
	}
	if err != nil && e.Log != nil {
		e.Log.Error("settlement pass error", zap.String("stage", stage), zap.Error(err))
	}
}
