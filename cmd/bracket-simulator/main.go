package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/shared/config"
	"github.com/radieske/bracket-bet-platform/internal/shared/logger"
)

// Simulador do provedor de chaves: expõe a mesma API JSON consumida pelo
// bracket-sync-worker e decide partidas sozinho em intervalos fixos.
// Útil para rodar a plataforma inteira sem conta no provedor real.

var (
	msDecided = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_matches_decided_total",
		Help: "Partidas decididas pelo simulador",
	})
)

type simMatch struct {
	ID            int64
	Player1       int64 // 0 = vaga dependente
	Player2       int64
	Prereq1       int64 // partida de origem do lado 1
	Prereq2       int64
	Prereq1Loser  bool
	Prereq2Loser  bool
	Winner        int64
	UnderwayAt    *time.Time
}

type simTournament struct {
	ID        int64
	Name      string
	StartedAt *time.Time
	Ended     bool

	Players map[int64]string
	Matches []*simMatch
}

type simulator struct {
	mu  sync.Mutex
	log *zap.Logger
	t   *simTournament
	rng *rand.Rand
}

// newBracket monta uma chave de 8 jogadores: quartas, semis, final e
// disputa de terceiro lugar (que usa os perdedores das semis).
func newBracket() *simTournament {
	players := map[int64]string{
		1: "Alice", 2: "Bruno", 3: "Carla", 4: "Diego",
		5: "Elena", 6: "Fábio", 7: "Gabi", 8: "Hugo",
	}
	return &simTournament{
		ID:      9001,
		Name:    "Copa Simulada",
		Players: players,
		Matches: []*simMatch{
			{ID: 1, Player1: 1, Player2: 8},
			{ID: 2, Player1: 4, Player2: 5},
			{ID: 3, Player1: 2, Player2: 7},
			{ID: 4, Player1: 3, Player2: 6},
			{ID: 5, Prereq1: 1, Prereq2: 2},
			{ID: 6, Prereq1: 3, Prereq2: 4},
			{ID: 7, Prereq1: 5, Prereq2: 6},
			{ID: 8, Prereq1: 5, Prereq2: 6, Prereq1Loser: true, Prereq2Loser: true},
		},
	}
}

// resolve devolve o jogador que ocupa um lado da partida, ou 0 se a
// dependência ainda não foi decidida.
func (t *simTournament) resolve(fixed, prereq int64, wantsLoser bool) int64 {
	if fixed != 0 {
		return fixed
	}
	for _, m := range t.Matches {
		if m.ID != prereq || m.Winner == 0 {
			continue
		}
		if !wantsLoser {
			return m.Winner
		}
		if m.Player1 == m.Winner {
			return m.Player2
		}
		return m.Player1
	}
	return 0
}

// tick decide uma partida resolível por vez. Na primeira decisão o torneio
// passa a "underway"; quando todas acabam, vira "ended".
func (s *simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.t.Ended {
		return
	}

	var ready []*simMatch
	for _, m := range s.t.Matches {
		if m.Winner != 0 {
			continue
		}
		p1 := s.t.resolve(m.Player1, m.Prereq1, m.Prereq1Loser)
		p2 := s.t.resolve(m.Player2, m.Prereq2, m.Prereq2Loser)
		if p1 != 0 && p2 != 0 {
			m.Player1, m.Player2 = p1, p2
			ready = append(ready, m)
		}
	}
	if len(ready) == 0 {
		for _, m := range s.t.Matches {
			if m.Winner == 0 {
				return // nada resolível ainda
			}
		}
		s.t.Ended = true
		s.log.Info("tournament ended", zap.String("name", s.t.Name))
		return
	}

	m := ready[s.rng.Intn(len(ready))]
	now := time.Now()
	if s.t.StartedAt == nil {
		s.t.StartedAt = &now
	}
	m.UnderwayAt = &now
	if s.rng.Intn(2) == 0 {
		m.Winner = m.Player1
	} else {
		m.Winner = m.Player2
	}
	msDecided.Inc()
	s.log.Info("match decided",
		zap.Int64("matchId", m.ID),
		zap.String("winner", s.t.Players[m.Winner]))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func optInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func (s *simulator) tournamentsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := "pending"
	if s.t.Ended {
		state = "ended"
	} else if s.t.StartedAt != nil {
		state = "underway"
	}
	writeJSON(w, []map[string]any{{
		"tournament": map[string]any{
			"id":         s.t.ID,
			"name":       s.t.Name,
			"state":      state,
			"started_at": optTime(s.t.StartedAt),
		},
	}})
}

func (s *simulator) matchesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.t.Matches))
	for _, m := range s.t.Matches {
		out = append(out, map[string]any{
			"match": map[string]any{
				"id":                            m.ID,
				"player1_id":                    optInt(m.Player1),
				"player2_id":                    optInt(m.Player2),
				"player1_prereq_match_id":       optInt(m.Prereq1),
				"player2_prereq_match_id":       optInt(m.Prereq2),
				"player1_is_prereq_match_loser": m.Prereq1Loser,
				"player2_is_prereq_match_loser": m.Prereq2Loser,
				"winner_id":                     optInt(m.Winner),
				"underway_at":                   optTime(m.UnderwayAt),
			},
		})
	}
	writeJSON(w, out)
}

func (s *simulator) participantsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.t.Players))
	for id, name := range s.t.Players {
		out = append(out, map[string]any{
			"participant": map[string]any{"id": id, "name": name},
		})
	}
	writeJSON(w, out)
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	prometheus.MustRegister(msDecided)

	sim := &simulator{
		log: log,
		t:   newBracket(),
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Janela antes da primeira decisão para permitir apostas.
	delay := 60 * time.Second
	if v := os.Getenv("SIMULATOR_START_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			delay = time.Duration(n) * time.Second
		}
	}
	tickEvery := 20 * time.Second
	if v := os.Getenv("SIMULATOR_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tickEvery = time.Duration(n) * time.Second
		}
	}

	go func() {
		time.Sleep(delay)
		for range time.Tick(tickEvery) {
			sim.tick()
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tournaments.json", sim.tournamentsHandler)
	mux.HandleFunc("/v1/tournaments/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/matches.json"):
			sim.matchesHandler(w, r)
		case strings.HasSuffix(r.URL.Path, "/participants.json"):
			sim.participantsHandler(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.HTTPPort
	log.Info("bracket-simulator listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatal("simulator failed", zap.Error(err))
	}
}
