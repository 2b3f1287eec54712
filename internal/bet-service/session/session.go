package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/bracket-bet-platform/internal/bet-service/repo"
	"github.com/radieske/bracket-bet-platform/internal/bracket"
)

// State é o estado da sessão de aposta de um usuário.
type State int

const (
	StateSelectingTournament State = iota
	StateWalkingBracket
	StateEnteringStake
	StateConfirmed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateSelectingTournament:
		return "SELECTING_TOURNAMENT"
	case StateWalkingBracket:
		return "WALKING_BRACKET"
	case StateEnteringStake:
		return "ENTERING_STAKE"
	case StateConfirmed:
		return "CONFIRMED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrAlreadyBet: o usuário já tem aposta neste torneio. Sessão
	// abortada antes de apresentar qualquer partida.
	ErrAlreadyBet = errors.New("user already has a bet on this tournament")

	// ErrBetsClosed: torneio não aceita mais apostas na seleção.
	ErrBetsClosed = errors.New("tournament is not open for bets")

	// ErrTournamentStarted: o torneio começou entre a seleção e o
	// commit. Sessão abortada sem cobrança e sem linhas persistidas.
	ErrTournamentStarted = errors.New("tournament started before commit")

	// ErrInvalidStake: valor por partida precisa ser inteiro positivo.
	// Recuperável: a sessão permanece em ENTERING_STAKE.
	ErrInvalidStake = errors.New("stake must be a positive integer")

	// ErrInsufficientBalance: exposição total acima do saldo.
	// Recuperável: a sessão permanece em ENTERING_STAKE.
	ErrInsufficientBalance = errors.New("insufficient balance for total exposure")

	// ErrInvalidPick: o vencedor escolhido não é candidato da partida.
	ErrInvalidPick = errors.New("picked player is not a candidate of this match")

	// ErrWrongState: operação incompatível com o estado corrente.
	ErrWrongState = errors.New("operation not allowed in current session state")

	// ErrEmptyBracket: torneio sem partidas, nada a prever.
	ErrEmptyBracket = errors.New("tournament has no matches")
)

// TournamentStore é a leitura de torneios/partidas usada pela sessão.
type TournamentStore interface {
	TournamentByID(ctx context.Context, id string) (bracket.Tournament, error)
	MatchesOf(ctx context.Context, tournamentID string) ([]bracket.Match, error)
	PlayersOf(ctx context.Context, tournamentID string) (map[string]string, error)
}

// BetStore é a persistência usada no commit da sessão.
type BetStore interface {
	HasBet(ctx context.Context, userID, tournamentID string) (bool, error)
	CreateBetWithPredictions(ctx context.Context, b repo.Bet, preds []repo.Prediction) error
}

// MatchView é a partida corrente apresentada ao usuário, com os dois
// candidatos resolvidos a partir de seeds e das predições anteriores.
type MatchView struct {
	MatchID     string
	Player1ID   string
	Player1Name string
	Player2ID   string
	Player2Name string
	Index       int // 1-based
	Total       int
}

// Session é a caminhada de um usuário pelo bracket de um torneio.
// Todo o estado fica em memória até o commit; abandono não deixa rastro.
type Session struct {
	mu sync.Mutex

	UserID     string
	Tournament bracket.Tournament
	State      State

	graph   *bracket.Graph
	order   []bracket.Match // snapshot imutável da ordem de travessia
	cursor  int             // índice da próxima partida a apresentar
	players map[string]string

	predicted   map[string]bracket.Outcome // matchID -> resultado previsto
	predictions []repo.Prediction

	amountPerMatch int64 // definido em ENTERING_STAKE

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Start abre uma sessão para o usuário no torneio escolhido. Aplica os
// guards de entrada: torneio aberto e sem aposta existente do usuário.
func Start(ctx context.Context, userID, tournamentID string, ts TournamentStore, bs BetStore) (*Session, error) {
	t, err := ts.TournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament: %w", err)
	}
	if !t.BetsOpen() {
		return nil, ErrBetsClosed
	}

	has, err := bs.HasBet(ctx, userID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("check existing bet: %w", err)
	}
	if has {
		return nil, ErrAlreadyBet
	}

	matches, err := ts.MatchesOf(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrEmptyBracket
	}

	g, err := bracket.NewGraph(matches)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	players, err := ts.PlayersOf(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	now := time.Now()
	return &Session{
		UserID:     userID,
		Tournament: t,
		State:      StateWalkingBracket,
		graph:      g,
		order:      g.TraversalOrder(),
		players:    players,
		predicted:  make(map[string]bracket.Outcome),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Current devolve a partida corrente com os candidatos resolvidos.
func (s *Session) Current() (MatchView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (MatchView, error) {
	if s.State != StateWalkingBracket {
		return MatchView{}, ErrWrongState
	}

	m := s.order[s.cursor]
	p1, err := s.graph.ResolveSlot(m, 0, s.predicted)
	if err != nil {
		return MatchView{}, err
	}
	p2, err := s.graph.ResolveSlot(m, 1, s.predicted)
	if err != nil {
		return MatchView{}, err
	}

	return MatchView{
		MatchID:     m.ID,
		Player1ID:   p1,
		Player1Name: s.displayName(p1),
		Player2ID:   p2,
		Player2Name: s.displayName(p2),
		Index:       s.cursor + 1,
		Total:       len(s.order),
	}, nil
}

func (s *Session) displayName(playerID string) string {
	if name, ok := s.players[playerID]; ok {
		return name
	}
	return playerID
}

// Pick registra a escolha do usuário para a partida corrente e avança o
// cursor. Quando a travessia termina, transiciona para ENTERING_STAKE.
// A propagação para partidas dependentes é implícita: os slots delas
// resolvem a partir do mapa de predições acumulado.
func (s *Session) Pick(winnerID string) (next *MatchView, done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.currentLocked()
	if err != nil {
		return nil, false, err
	}

	var loserID string
	switch winnerID {
	case view.Player1ID:
		loserID = view.Player2ID
	case view.Player2ID:
		loserID = view.Player1ID
	default:
		return nil, false, ErrInvalidPick
	}

	m := s.order[s.cursor]
	s.predicted[m.ID] = bracket.Outcome{WinnerID: winnerID, LoserID: loserID}
	s.predictions = append(s.predictions, repo.Prediction{
		ID:           uuid.NewString(),
		UserID:       s.UserID,
		TournamentID: s.Tournament.ID,
		MatchID:      m.ID,
		WinnerID:     winnerID,
		LoserID:      loserID,
	})
	s.cursor++
	s.UpdatedAt = time.Now()

	if s.cursor == len(s.order) {
		s.State = StateEnteringStake
		return nil, true, nil
	}

	v, err := s.currentLocked()
	if err != nil {
		return nil, false, err
	}
	return &v, false, nil
}

// EnterStake valida e registra o valor por partida. Erros de validação
// são locais: a sessão permanece em ENTERING_STAKE para nova tentativa.
func (s *Session) EnterStake(amountPerMatch int64, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateEnteringStake {
		return ErrWrongState
	}
	if amountPerMatch <= 0 {
		return ErrInvalidStake
	}
	exposure := amountPerMatch * int64(len(s.predictions))
	if float64(exposure) > balance {
		return ErrInsufficientBalance
	}

	s.amountPerMatch = amountPerMatch
	s.UpdatedAt = time.Now()
	return nil
}

// Exposure devolve a exposição total da sessão para o valor dado.
func (s *Session) Exposure(amountPerMatch int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return amountPerMatch * int64(len(s.predictions))
}

// Commit re-verifica que o torneio não começou e persiste aposta e
// predições como unidade atômica. Se o torneio tiver começado, aborta
// sem cobrança e sem linhas persistidas.
func (s *Session) Commit(ctx context.Context, ts TournamentStore, bs BetStore) (repo.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateEnteringStake || s.amountPerMatch <= 0 {
		return repo.Bet{}, ErrWrongState
	}

	// Guard de staleness: estado fresco do torneio, não o da seleção.
	t, err := ts.TournamentByID(ctx, s.Tournament.ID)
	if err != nil {
		return repo.Bet{}, fmt.Errorf("reload tournament: %w", err)
	}
	if !t.BetsOpen() {
		s.State = StateAborted
		return repo.Bet{}, ErrTournamentStarted
	}

	b := repo.Bet{
		ID:             uuid.NewString(),
		UserID:         s.UserID,
		TournamentID:   s.Tournament.ID,
		AmountPerMatch: s.amountPerMatch,
		CreatedAt:      time.Now(),
	}
	if err := bs.CreateBetWithPredictions(ctx, b, s.predictions); err != nil {
		// Persistência é tudo-ou-nada; a sessão segue válida para retry.
		return repo.Bet{}, fmt.Errorf("persist bet: %w", err)
	}

	s.State = StateConfirmed
	s.UpdatedAt = time.Now()
	return b, nil
}

// Abort marca a sessão como abortada. Nenhum estado persistido muda.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateAborted
	s.UpdatedAt = time.Now()
}

// Predictions devolve uma cópia das predições feitas até aqui.
func (s *Session) Predictions() []repo.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repo.Prediction, len(s.predictions))
	copy(out, s.predictions)
	return out
}
