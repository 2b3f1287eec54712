package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bet-service/dto"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/session"
	"github.com/radieske/bracket-bet-platform/internal/bet-service/wallet"
	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

// Store agrega as operações de leitura e persistência usadas pelo fluxo
// de sessão de aposta.
type Store interface {
	session.TournamentStore
	session.BetStore
	OpenTournaments(ctx context.Context) ([]bracket.Tournament, error)
}

type Server struct {
	log      *zap.Logger
	store    Store
	sessions *session.Manager
	wcli     *wallet.Client
	guards   []Guard
	publ     interface {
		PublishBetPlaced(context.Context, events.BetPlaced) error
	}
}

func NewServer(log *zap.Logger, store Store, sessions *session.Manager, wcli *wallet.Client, p interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}) *Server {
	return &Server{
		log:      log,
		store:    store,
		sessions: sessions,
		wcli:     wcli,
		guards:   []Guard{ensureAccount(wcli)},
		publ:     p,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tournaments", s.listTournaments) // GET
	mux.HandleFunc("/sessions", s.startSession)       // POST
	mux.HandleFunc("/sessions/pick", s.pick)          // POST
	mux.HandleFunc("/sessions/stake", s.stake)        // POST
	return mux
}

// listTournaments devolve os torneios abertos para aposta
func (s *Server) listTournaments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ts, err := s.store.OpenTournaments(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.TournamentResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, dto.TournamentResponse{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, out)
}

// startSession abre a caminhada pelo bracket para o usuário
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.TournamentID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := runGuards(r.Context(), req.UserID, req.Username, s.guards...); err != nil {
		s.log.Warn("guard failed", zap.String("userId", req.UserID), zap.Error(err))
		http.Error(w, "account check failed", http.StatusServiceUnavailable)
		return
	}

	sess, err := session.Start(r.Context(), req.UserID, req.TournamentID, s.store, s.store)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyBet):
			http.Error(w, "you already placed a bet on this tournament", http.StatusConflict)
		case errors.Is(err, session.ErrBetsClosed):
			http.Error(w, "tournament is not open for bets", http.StatusConflict)
		case errors.Is(err, session.ErrEmptyBracket):
			http.Error(w, "tournament has no matches", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	s.sessions.Put(sess)

	view, err := sess.Current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, sessionResponse(sess, &view, ""))
}

// pick registra a escolha do vencedor da partida corrente
func (s *Server) pick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.Get(req.UserID)
	if !ok {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}

	next, done, err := sess.Pick(req.WinnerID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidPick):
			http.Error(w, "picked player is not in this match", http.StatusBadRequest)
		case errors.Is(err, session.ErrWrongState):
			http.Error(w, "session is not walking the bracket", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if done {
		writeJSON(w, sessionResponse(sess, nil, "all predictions saved, enter your stake per match"))
		return
	}
	writeJSON(w, sessionResponse(sess, next, ""))
}

// stake valida o valor por partida e tenta o commit atômico da aposta
func (s *Server) stake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.Get(req.UserID)
	if !ok {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}

	// Saldo corrente para o teto de exposição.
	acc, err := s.wcli.EnsureAccount(r.Context(), req.UserID, "")
	if err != nil {
		s.log.Warn("wallet lookup failed", zap.String("userId", req.UserID), zap.Error(err))
		http.Error(w, "wallet unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := sess.EnterStake(req.AmountPerMatch, acc.Balance); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidStake):
			http.Error(w, "stake must be a positive integer", http.StatusBadRequest)
		case errors.Is(err, session.ErrInsufficientBalance):
			http.Error(w, "total exposure exceeds your balance", http.StatusBadRequest)
		case errors.Is(err, session.ErrWrongState):
			http.Error(w, "session is not waiting for a stake", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	bet, err := sess.Commit(r.Context(), s.store, s.store)
	if err != nil {
		if errors.Is(err, session.ErrTournamentStarted) {
			s.sessions.Delete(req.UserID)
			http.Error(w, "tournament already started, bet aborted", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sessions.Delete(req.UserID)

	n := len(sess.Predictions())
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:          bet.ID,
		UserID:         bet.UserID,
		TournamentID:   bet.TournamentID,
		AmountPerMatch: bet.AmountPerMatch,
		Predictions:    n,
		TotalExposure:  bet.AmountPerMatch * int64(n),
	})

	writeJSON(w, dto.BetPlacedResponse{
		BetID:          bet.ID,
		TournamentID:   bet.TournamentID,
		AmountPerMatch: bet.AmountPerMatch,
		Predictions:    n,
		TotalExposure:  bet.AmountPerMatch * int64(n),
		Status:         "CONFIRMED",
	})
}

func sessionResponse(sess *session.Session, view *session.MatchView, msg string) dto.SessionResponse {
	resp := dto.SessionResponse{
		State:        sess.State.String(),
		TournamentID: sess.Tournament.ID,
		Predictions:  len(sess.Predictions()),
		Message:      msg,
	}
	if view != nil {
		resp.Match = &dto.MatchViewResponse{
			MatchID:     view.MatchID,
			Player1ID:   view.Player1ID,
			Player1Name: view.Player1Name,
			Player2ID:   view.Player2ID,
			Player2Name: view.Player2Name,
			Index:       view.Index,
			Total:       view.Total,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
