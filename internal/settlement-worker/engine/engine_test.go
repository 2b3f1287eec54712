package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/internal/quotes"
)

type fakeStores struct {
	tournaments []bracket.Tournament
	matches     map[string][]bracket.Match
	players     map[string]map[string]string
	bets        map[string][]Bet
	preds       map[string][]Prediction
	quoteBook   map[string][]quotes.Entry

	settled  map[string]bool
	balances map[string]float64
	applies  int
}

func (f *fakeStores) FinishedUnsettled(ctx context.Context) ([]bracket.Tournament, error) {
	// Lista propositalmente "velha": devolve finalizados mesmo depois de
	// liquidados, como numa releitura após crash. O latch é quem protege.
	var out []bracket.Tournament
	for _, t := range f.tournaments {
		if t.Finished {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStores) MatchesOf(ctx context.Context, id string) ([]bracket.Match, error) {
	return f.matches[id], nil
}

func (f *fakeStores) PlayersOf(ctx context.Context, id string) (map[string]string, error) {
	return f.players[id], nil
}

func (f *fakeStores) BetsForTournament(ctx context.Context, id string) ([]Bet, error) {
	return f.bets[id], nil
}

func (f *fakeStores) PredictionsForTournament(ctx context.Context, id string) ([]Prediction, error) {
	return f.preds[id], nil
}

func (f *fakeStores) QuotesForTournament(ctx context.Context, id string) ([]quotes.Entry, error) {
	return f.quoteBook[id], nil
}

func (f *fakeStores) ApplySettlement(ctx context.Context, id string, deltas map[string]float64) (bool, error) {
	f.applies++
	if f.settled[id] {
		return false, nil
	}
	f.settled[id] = true
	for userID, d := range deltas {
		f.balances[userID] += d
	}
	return true, nil
}

type fakeSink struct {
	userMsgs   map[string][]string
	broadcasts []string
}

func (s *fakeSink) SendToUser(ctx context.Context, userID, text string) error {
	if s.userMsgs == nil {
		s.userMsgs = map[string][]string{}
	}
	s.userMsgs[userID] = append(s.userMsgs[userID], text)
	return nil
}

func (s *fakeSink) BroadcastToGroups(ctx context.Context, text string) error {
	s.broadcasts = append(s.broadcasts, text)
	return nil
}

func settledFixture() *fakeStores {
	return &fakeStores{
		tournaments: []bracket.Tournament{{ID: "t1", Name: "Copa", Finished: true}},
		matches: map[string][]bracket.Match{"t1": {
			{ID: "semi1", TournamentID: "t1",
				Slots:    [2]bracket.Slot{{PlayerID: "A"}, {PlayerID: "B"}},
				WinnerID: "A"},
		}},
		players: map[string]map[string]string{"t1": {"A": "Alice", "B": "Bruno"}},
		bets: map[string][]Bet{"t1": {
			{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10},
		}},
		preds: map[string][]Prediction{"t1": {
			{ID: "p1", UserID: "u1", TournamentID: "t1", MatchID: "semi1", WinnerID: "A", LoserID: "B"},
		}},
		quoteBook: map[string][]quotes.Entry{"t1": {
			{TournamentID: "t1", CandidateID: "A", OpponentID: "B", Value: 1.5},
			{TournamentID: "t1", CandidateID: "B", OpponentID: "A", Value: 2.0},
		}},
		settled:  map[string]bool{},
		balances: map[string]float64{},
	}
}

func newEngine(f *fakeStores, sink *fakeSink) *Engine {
	return &Engine{
		Log:         zap.NewNop(),
		Tournaments: f,
		Bets:        f,
		Ledger:      f,
		Sink:        sink,
	}
}

// Liquidar duas vezes só muda o ledger na primeira; a segunda é no-op.
func TestRunPass_AtMostOnce(t *testing.T) {
	f := settledFixture()
	sink := &fakeSink{}
	e := newEngine(f, sink)

	require.NoError(t, e.RunPass(context.Background()))
	firstBalance := f.balances["u1"]
	assert.Equal(t, 10.0*2.0/1.5, firstBalance)
	assert.Len(t, sink.userMsgs["u1"], 1)

	require.NoError(t, e.RunPass(context.Background()))
	assert.Equal(t, firstBalance, f.balances["u1"])
	// Sem nova notificação na repetição.
	assert.Len(t, sink.userMsgs["u1"], 1)
	assert.Equal(t, 2, f.applies)
}

// Falha num torneio não bloqueia a liquidação dos demais.
func TestRunPass_IsolatesTournamentFailures(t *testing.T) {
	f := settledFixture()
	// Torneio corrompido: finalizado sem vencedor registrado.
	f.tournaments = append([]bracket.Tournament{{ID: "t0", Name: "Broken", Finished: true}}, f.tournaments...)
	f.matches["t0"] = []bracket.Match{
		{ID: "m0", TournamentID: "t0", Slots: [2]bracket.Slot{{PlayerID: "X"}, {PlayerID: "Y"}}},
	}
	f.bets["t0"] = []Bet{{ID: "b0", UserID: "u9", TournamentID: "t0", AmountPerMatch: 5}}
	f.preds["t0"] = []Prediction{
		{ID: "p0", UserID: "u9", TournamentID: "t0", MatchID: "m0", WinnerID: "X", LoserID: "Y"},
	}

	var stages []string
	e := newEngine(f, &fakeSink{})
	e.OnError = func(stage string) { stages = append(stages, stage) }

	require.NoError(t, e.RunPass(context.Background()))

	// t0 pulado sem latch; t1 liquidado normalmente.
	assert.False(t, f.settled["t0"])
	assert.True(t, f.settled["t1"])
	assert.Contains(t, stages, "data_inconsistency")
	assert.Zero(t, f.balances["u9"])
}

func TestRunPass_EmptyTournamentStillLatches(t *testing.T) {
	f := settledFixture()
	f.bets["t1"] = nil
	f.preds["t1"] = nil

	e := newEngine(f, &fakeSink{})
	require.NoError(t, e.RunPass(context.Background()))

	assert.True(t, f.settled["t1"])
	assert.Empty(t, f.balances)
}

func TestUserMessages_Composition(t *testing.T) {
	res := &Result{
		Deltas: map[string]float64{"u1": -10},
		Items: []Item{
			{UserID: "u1", MatchID: "semi1", PredictedWinner: "B", PredictedLoser: "A", Outcome: OutcomeLost, Delta: -10},
			{UserID: "u1", MatchID: "final", PredictedWinner: "B", PredictedLoser: "C", Outcome: OutcomeVoided},
		},
	}
	names := map[string]string{"A": "Alice", "B": "Bruno", "C": "Carla"}

	msgs := UserMessages("Copa", names, res)
	require.Contains(t, msgs, "u1")
	msg := msgs["u1"]
	assert.True(t, strings.Contains(msg, "loss: Bruno over Alice"))
	assert.True(t, strings.Contains(msg, "void: Bruno over Carla"))
	assert.True(t, strings.Contains(msg, "Net result: -10.00"))
}

func TestQuoteSummary_UsesDisplayNames(t *testing.T) {
	s := QuoteSummary("Copa", map[string]string{"A": "Alice", "B": "Bruno"}, []quotes.Entry{
		{CandidateID: "B", OpponentID: "A", Value: 2.0},
		{CandidateID: "A", OpponentID: "B", Value: 1.5},
	})
	assert.Contains(t, s, "Alice beats Bruno: 1.50")
	assert.Contains(t, s, "Bruno beats Alice: 2.00")
}
