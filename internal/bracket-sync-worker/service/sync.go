package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

// Provider é a visão remota das chaves (API do provedor).
type Provider interface {
	Tournaments(ctx context.Context) ([]bracket.Tournament, error)
	Matches(ctx context.Context, tournamentID string) ([]bracket.Match, error)
	Participants(ctx context.Context, tournamentID string) (map[string]string, error)
}

// Store é o estado local materializado pelo worker.
type Store interface {
	UpsertTournament(ctx context.Context, t bracket.Tournament) error
	UpsertMatches(ctx context.Context, matches []bracket.Match) error
	UpsertParticipants(ctx context.Context, tournamentID string, names map[string]string) error
	DecidedWinners(ctx context.Context, tournamentID string) (map[string]string, error)
}

// UpdatePublisher propaga mudanças de chave para os assinantes em tempo real.
type UpdatePublisher interface {
	PublishBracketUpdate(ctx context.Context, e events.BracketUpdate) error
}

// Sync espelha o estado do provedor no banco local em intervalos fixos e
// publica um evento quando alguma partida é decidida ou um torneio encerra.
type Sync struct {
	Log       *zap.Logger
	Provider  Provider
	Store     Store
	Publisher UpdatePublisher

	OnSynced func()       // métricas
	OnError  func(string) // métricas por fase

	// Torneios já anunciados como encerrados; evita repetir o broadcast
	// a cada tick. Acessado só pela goroutine do worker.
	announcedFinished map[string]bool
}

// Run executa passes de sincronização até o contexto ser cancelado.
func (s *Sync) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.Log.Error("sync pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce sincroniza todos os torneios visíveis no provedor. Falha em um
// torneio não interrompe os demais.
func (s *Sync) RunOnce(ctx context.Context) error {
	tournaments, err := s.Provider.Tournaments(ctx)
	if err != nil {
		s.fail("list")
		return err
	}

	for _, t := range tournaments {
		if err := s.syncOne(ctx, t); err != nil {
			s.Log.Warn("tournament sync failed",
				zap.String("tournamentId", t.ID),
				zap.String("tournament", t.Name),
				zap.Error(err))
			s.fail("tournament")
			continue
		}
		if s.OnSynced != nil {
			s.OnSynced()
		}
	}
	return nil
}

func (s *Sync) syncOne(ctx context.Context, t bracket.Tournament) error {
	before, err := s.Store.DecidedWinners(ctx, t.ID)
	if err != nil {
		return err
	}

	matches, err := s.Provider.Matches(ctx, t.ID)
	if err != nil {
		return err
	}
	names, err := s.Provider.Participants(ctx, t.ID)
	if err != nil {
		return err
	}

	// O provedor não expõe "started" no torneio: derivamos do estado das
	// partidas. Qualquer partida em andamento ou decidida fecha apostas.
	for _, m := range matches {
		if m.Started || m.Decided() {
			t.Started = true
			break
		}
	}

	if err := s.Store.UpsertTournament(ctx, t); err != nil {
		return err
	}
	if err := s.Store.UpsertMatches(ctx, matches); err != nil {
		return err
	}
	if err := s.Store.UpsertParticipants(ctx, t.ID, names); err != nil {
		return err
	}

	var decided []string
	for _, m := range matches {
		if m.Decided() && before[m.ID] == "" {
			decided = append(decided, m.ID)
		}
	}
	sort.Strings(decided)

	if s.announcedFinished == nil {
		s.announcedFinished = make(map[string]bool)
	}
	newlyFinished := t.Finished && !s.announcedFinished[t.ID]
	if len(decided) == 0 && !newlyFinished {
		return nil
	}
	if t.Finished {
		s.announcedFinished[t.ID] = true
	}

	s.Log.Info("bracket updated",
		zap.String("tournamentId", t.ID),
		zap.String("tournament", t.Name),
		zap.Strings("decided", decided),
		zap.Bool("finished", t.Finished))

	if s.Publisher != nil {
		if err := s.Publisher.PublishBracketUpdate(ctx, events.BracketUpdate{
			TournamentID: t.ID,
			Name:         t.Name,
			Finished:     t.Finished,
			DecidedIDs:   decided,
			UpdatedAt:    time.Now(),
			Source:       "bracket-sync-worker",
		}); err != nil {
			s.Log.Warn("bracket update publish failed", zap.Error(err))
			s.fail("publish")
		}
	}
	return nil
}

func (s *Sync) fail(stage string) {
	if s.OnError != nil {
		s.OnError(stage)
	}
}
