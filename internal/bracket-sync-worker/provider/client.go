package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
)

// Client consome a API v1 do provedor de chaves (formato Challonge).
// Respostas cruas passam por um cache Redis com TTL curto para não
// martelar o provedor a cada tick de sincronização.
type Client struct {
	BaseURL  string
	APIKey   string
	HTTP     *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewClient(baseURL, apiKey string, rdb *redis.Client, cacheTTL time.Duration) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Redis:    rdb,
		CacheTTL: cacheTTL,
	}
}

// Formato de resposta do provedor: cada elemento embrulhado em uma chave
// com o nome do recurso.
type tournamentWrapper struct {
	Tournament struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		State     string  `json:"state"`
		StartedAt *string `json:"started_at"`
	} `json:"tournament"`
}

type matchWrapper struct {
	Match struct {
		ID                        int64   `json:"id"`
		Player1ID                 *int64  `json:"player1_id"`
		Player1PrereqMatchID      *int64  `json:"player1_prereq_match_id"`
		Player1IsPrereqMatchLoser bool    `json:"player1_is_prereq_match_loser"`
		Player2ID                 *int64  `json:"player2_id"`
		Player2PrereqMatchID      *int64  `json:"player2_prereq_match_id"`
		Player2IsPrereqMatchLoser bool    `json:"player2_is_prereq_match_loser"`
		WinnerID                  *int64  `json:"winner_id"`
		UnderwayAt                *string `json:"underway_at"`
	} `json:"match"`
}

type participantWrapper struct {
	Participant struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"participant"`
}

// Tournaments lista os torneios visíveis no provedor.
func (c *Client) Tournaments(ctx context.Context) ([]bracket.Tournament, error) {
	body, err := c.get(ctx, "/tournaments.json", "provider:tournaments")
	if err != nil {
		return nil, err
	}

	var wrapped []tournamentWrapper
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tournaments: %w", err)
	}

	out := make([]bracket.Tournament, 0, len(wrapped))
	for _, w := range wrapped {
		t := w.Tournament
		out = append(out, bracket.Tournament{
			ID:   strconv.FormatInt(t.ID, 10),
			Name: t.Name,
			// started_at preenchido significa chave sorteada: inscrições
			// (e apostas) fechadas.
			SubscriptionsClosed: t.StartedAt != nil,
			Finished:            t.State == "ended",
		})
	}
	return out, nil
}

// Matches carrega as partidas de um torneio.
func (c *Client) Matches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	path := fmt.Sprintf("/tournaments/%s/matches.json", tournamentID)
	body, err := c.get(ctx, path, "provider:matches:"+tournamentID)
	if err != nil {
		return nil, err
	}

	var wrapped []matchWrapper
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	out := make([]bracket.Match, 0, len(wrapped))
	for _, w := range wrapped {
		m := w.Match
		out = append(out, bracket.Match{
			ID:           strconv.FormatInt(m.ID, 10),
			TournamentID: tournamentID,
			Slots: [2]bracket.Slot{
				{PlayerID: optID(m.Player1ID), PrereqMatchID: optID(m.Player1PrereqMatchID), WantsLoser: m.Player1IsPrereqMatchLoser},
				{PlayerID: optID(m.Player2ID), PrereqMatchID: optID(m.Player2PrereqMatchID), WantsLoser: m.Player2IsPrereqMatchLoser},
			},
			WinnerID: optID(m.WinnerID),
			Started:  m.UnderwayAt != nil,
		})
	}
	return out, nil
}

// Participants devolve o mapa id -> nome dos jogadores do torneio.
func (c *Client) Participants(ctx context.Context, tournamentID string) (map[string]string, error) {
	path := fmt.Sprintf("/tournaments/%s/participants.json", tournamentID)
	body, err := c.get(ctx, path, "provider:participants:"+tournamentID)
	if err != nil {
		return nil, err
	}

	var wrapped []participantWrapper
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}

	out := make(map[string]string, len(wrapped))
	for _, w := range wrapped {
		out[strconv.FormatInt(w.Participant.ID, 10)] = w.Participant.Name
	}
	return out, nil
}

// get busca o corpo cru do recurso, servindo do cache Redis quando possível.
func (c *Client) get(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.Redis != nil {
		if cached, err := c.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	u := c.BaseURL + path
	if c.APIKey != "" {
		u += "?" + url.Values{"api_key": {c.APIKey}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider request %s: unexpected status %d", path, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if c.Redis != nil {
		_ = c.Redis.Set(ctx, cacheKey, body, c.CacheTTL).Err()
	}
	return body, nil
}

func optID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
