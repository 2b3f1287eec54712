package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/bracket-bet-platform/internal/bracket-service/cache"
	"github.com/radieske/bracket-bet-platform/internal/bracket-service/dto"
	"github.com/radieske/bracket-bet-platform/internal/bracket-service/repo"
)

// API expõe os endpoints REST de consulta de chaves e cotações
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo
	Cache    *cache.Cache
	CacheTTL time.Duration
	WS       http.HandlerFunc // handler do hub WebSocket, opcional
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/tournaments", a.listTournaments)         // Lista torneios conhecidos
	r.Get("/v1/tournaments/{id}/matches", a.getMatches) // Chave completa de um torneio
	r.Get("/v1/tournaments/{id}/quotes", a.getQuotes)   // Cotações direcionais
	if a.WS != nil {
		r.Get("/v1/ws", a.WS) // Atualizações de chave em tempo real
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listTournaments(w http.ResponseWriter, r *http.Request) {
	ts, err := a.ReadRepo.ListTournaments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

// getMatches retorna a chave de um torneio, preferencialmente do cache
func (a *API) getMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache []dto.MatchView
	if ok, _ := a.Cache.GetMatches(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	ms, err := a.ReadRepo.GetMatchesByTournament(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(ms) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	_ = a.Cache.SetMatches(r.Context(), id, ms, a.CacheTTL)
	writeJSON(w, http.StatusOK, ms)
}

// getQuotes retorna as cotações de um torneio, preferencialmente do cache
func (a *API) getQuotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache []dto.QuoteView
	if ok, _ := a.Cache.GetQuotes(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	qs, err := a.ReadRepo.GetQuotesByTournament(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(qs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	_ = a.Cache.SetQuotes(r.Context(), id, qs, a.CacheTTL)
	writeJSON(w, http.StatusOK, qs)
}
