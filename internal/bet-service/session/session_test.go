package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bracket-bet-platform/internal/bet-service/repo"
	"github.com/radieske/bracket-bet-platform/internal/bracket"
)

type fakeTournamentStore struct {
	tournament bracket.Tournament
	matches    []bracket.Match
	players    map[string]string
}

func (f *fakeTournamentStore) TournamentByID(ctx context.Context, id string) (bracket.Tournament, error) {
	return f.tournament, nil
}

func (f *fakeTournamentStore) MatchesOf(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	return f.matches, nil
}

func (f *fakeTournamentStore) PlayersOf(ctx context.Context, tournamentID string) (map[string]string, error) {
	return f.players, nil
}

type fakeBetStore struct {
	hasBet     bool
	failCreate error
	bets       []repo.Bet
	preds      []repo.Prediction
}

func (f *fakeBetStore) HasBet(ctx context.Context, userID, tournamentID string) (bool, error) {
	return f.hasBet, nil
}

func (f *fakeBetStore) CreateBetWithPredictions(ctx context.Context, b repo.Bet, preds []repo.Prediction) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.bets = append(f.bets, b)
	f.preds = append(f.preds, preds...)
	return nil
}

func fourPlayerStore() *fakeTournamentStore {
	return &fakeTournamentStore{
		tournament: bracket.Tournament{ID: "t1", Name: "Copa"},
		matches: []bracket.Match{
			{ID: "semi1", TournamentID: "t1", Slots: [2]bracket.Slot{{PlayerID: "A"}, {PlayerID: "B"}}},
			{ID: "semi2", TournamentID: "t1", Slots: [2]bracket.Slot{{PlayerID: "C"}, {PlayerID: "D"}}},
			{ID: "final", TournamentID: "t1", Slots: [2]bracket.Slot{
				{PrereqMatchID: "semi1"}, {PrereqMatchID: "semi2"},
			}},
		},
		players: map[string]string{"A": "Alice", "B": "Bruno", "C": "Carla", "D": "Duda"},
	}
}

func TestStart_DuplicateBetRejected(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{hasBet: true}

	_, err := Start(context.Background(), "u1", "t1", ts, bs)
	assert.ErrorIs(t, err, ErrAlreadyBet)
}

func TestStart_BetsClosed(t *testing.T) {
	ts := fourPlayerStore()
	ts.tournament.Started = true

	_, err := Start(context.Background(), "u1", "t1", ts, &fakeBetStore{})
	assert.ErrorIs(t, err, ErrBetsClosed)
}

func TestWalk_PropagatesPredictions(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{}

	s, err := Start(context.Background(), "u1", "t1", ts, bs)
	require.NoError(t, err)
	assert.Equal(t, StateWalkingBracket, s.State)

	view, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "semi1", view.MatchID)
	assert.Equal(t, "Alice", view.Player1Name)

	// B vence A, D vence C; a final deve apresentar B x D, não os
	// jogadores reais.
	next, done, err := s.Pick("B")
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, "semi2", next.MatchID)

	next, done, err = s.Pick("D")
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, "final", next.MatchID)
	assert.Equal(t, "B", next.Player1ID)
	assert.Equal(t, "D", next.Player2ID)

	_, done, err = s.Pick("D")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StateEnteringStake, s.State)
	assert.Len(t, s.Predictions(), 3)
}

func TestPick_InvalidCandidate(t *testing.T) {
	ts := fourPlayerStore()
	s, err := Start(context.Background(), "u1", "t1", ts, &fakeBetStore{})
	require.NoError(t, err)

	_, _, err = s.Pick("Z")
	assert.ErrorIs(t, err, ErrInvalidPick)
	// Escolha inválida não avança o cursor.
	view, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "semi1", view.MatchID)
}

func walkAll(t *testing.T, s *Session) {
	t.Helper()
	for {
		view, err := s.Current()
		require.NoError(t, err)
		_, done, err := s.Pick(view.Player1ID)
		require.NoError(t, err)
		if done {
			return
		}
	}
}

func TestEnterStake_Validation(t *testing.T) {
	ts := fourPlayerStore()
	s, err := Start(context.Background(), "u1", "t1", ts, &fakeBetStore{})
	require.NoError(t, err)
	walkAll(t, s)

	// Não positivo: rejeita, permanece em ENTERING_STAKE.
	assert.ErrorIs(t, s.EnterStake(0, 1000), ErrInvalidStake)
	assert.ErrorIs(t, s.EnterStake(-5, 1000), ErrInvalidStake)
	assert.Equal(t, StateEnteringStake, s.State)

	// Exposição 3 partidas x 400 = 1200 > 1000.
	assert.ErrorIs(t, s.EnterStake(400, 1000), ErrInsufficientBalance)
	assert.Equal(t, StateEnteringStake, s.State)

	assert.NoError(t, s.EnterStake(300, 1000))
}

func TestCommit_PersistsAtomically(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{}
	s, err := Start(context.Background(), "u1", "t1", ts, bs)
	require.NoError(t, err)
	walkAll(t, s)
	require.NoError(t, s.EnterStake(10, 1000))

	b, err := s.Commit(context.Background(), ts, bs)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, s.State)
	assert.Equal(t, int64(10), b.AmountPerMatch)
	assert.Len(t, bs.bets, 1)
	assert.Len(t, bs.preds, 3)
}

func TestCommit_StaleTournamentAborts(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{}
	s, err := Start(context.Background(), "u1", "t1", ts, bs)
	require.NoError(t, err)
	walkAll(t, s)
	require.NoError(t, s.EnterStake(10, 1000))

	// Torneio começou entre a seleção e o commit.
	ts.tournament.Started = true

	_, err = s.Commit(context.Background(), ts, bs)
	assert.ErrorIs(t, err, ErrTournamentStarted)
	assert.Equal(t, StateAborted, s.State)
	assert.Empty(t, bs.bets)
	assert.Empty(t, bs.preds)
}

func TestCommit_StoreFailureLeavesSessionRetryable(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{failCreate: errors.New("pg down")}
	s, err := Start(context.Background(), "u1", "t1", ts, bs)
	require.NoError(t, err)
	walkAll(t, s)
	require.NoError(t, s.EnterStake(10, 1000))

	_, err = s.Commit(context.Background(), ts, bs)
	require.Error(t, err)
	assert.Equal(t, StateEnteringStake, s.State)
	assert.Empty(t, bs.bets)
}

// Sessão abandonada (nunca chega a CONFIRMED) não toca o store.
func TestAbandonedSessionLeavesStoreUntouched(t *testing.T) {
	ts := fourPlayerStore()
	bs := &fakeBetStore{}
	s, err := Start(context.Background(), "u1", "t1", ts, bs)
	require.NoError(t, err)

	_, _, err = s.Pick("A")
	require.NoError(t, err)
	s.Abort()

	assert.Equal(t, StateAborted, s.State)
	assert.Empty(t, bs.bets)
	assert.Empty(t, bs.preds)
}
