package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/wallet-service/dto"
	"github.com/radieske/bracket-bet-platform/internal/wallet-service/repo"
)

// Repo define a interface de operações de conta usadas pelo handler HTTP
type Repo interface {
	GetOrCreateAccount(ctx context.Context, userID, username string, startBalance float64) (repo.Account, error)
	GetAccount(ctx context.Context, userID string) (repo.Account, error)
	Ranking(ctx context.Context, limit int) ([]repo.Account, error)
}

// Server expõe endpoints HTTP para contas de usuário (wallet)
type Server struct {
	log          *zap.Logger
	repo         Repo
	startBalance float64 // saldo inicial de contas novas
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo, startBalance float64) *Server {
	return &Server{log: log, repo: repo, startBalance: startBalance}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getAccount)         // GET ?userId=...&username=...
	mux.HandleFunc("/wallet/ranking", s.getRanking) // GET ?limit=...
	return mux
}

// getAccount retorna (ou cria com saldo inicial) a conta do usuário
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	username := r.URL.Query().Get("username")

	acc, err := s.repo.GetOrCreateAccount(r.Context(), userID, username, s.startBalance)
	if err != nil {
		s.log.Error("get or create account", zap.String("userId", userID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.AccountResponse{UserID: acc.UserID, Username: acc.Username, Balance: acc.Balance})
}

// getRanking retorna as contas com maior saldo
func (s *Server) getRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	accs, err := s.repo.Ranking(r.Context(), limit)
	if err != nil {
		s.log.Error("ranking", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.RankingResponse{}
	for i, acc := range accs {
		resp.Entries = append(resp.Entries, dto.RankingEntry{
			Position: i + 1,
			UserID:   acc.UserID,
			Username: acc.Username,
			Balance:  acc.Balance,
		})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
