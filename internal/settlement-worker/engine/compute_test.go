package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/internal/quotes"
)

// Bracket de 4 jogadores com resultados reais: A vence B, C vence D,
// final A x C com A campeão.
func decidedMatches() map[string]bracket.Match {
	return map[string]bracket.Match{
		"semi1": {ID: "semi1", TournamentID: "t1",
			Slots:    [2]bracket.Slot{{PlayerID: "A"}, {PlayerID: "B"}},
			WinnerID: "A"},
		"semi2": {ID: "semi2", TournamentID: "t1",
			Slots:    [2]bracket.Slot{{PlayerID: "C"}, {PlayerID: "D"}},
			WinnerID: "C"},
		"final": {ID: "final", TournamentID: "t1",
			Slots: [2]bracket.Slot{
				{PlayerID: "A", PrereqMatchID: "semi1"},
				{PlayerID: "C", PrereqMatchID: "semi2"},
			},
			WinnerID: "A"},
	}
}

func fullBook(t *testing.T) *quotes.Book {
	t.Helper()
	var entries []quotes.Entry
	pairs := [][2]string{{"A", "B"}, {"C", "D"}, {"A", "C"}}
	for _, p := range pairs {
		entries = append(entries,
			quotes.Entry{TournamentID: "t1", CandidateID: p[0], OpponentID: p[1], Value: 1.5},
			quotes.Entry{TournamentID: "t1", CandidateID: p[1], OpponentID: p[0], Value: 2.0},
		)
	}
	b, err := quotes.NewBook(entries)
	require.NoError(t, err)
	return b
}

// Cenário da aposta toda errada: B sobre A (-10), D sobre C (-10) e
// D sobre B na final — par {D,B} não é subconjunto dos jogadores reais
// {A,C}, então anulada. Líquido: -20.
func TestCompute_DivergedBracketScenario(t *testing.T) {
	bets := []Bet{{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10}}
	preds := []Prediction{
		{ID: "p1", UserID: "u1", TournamentID: "t1", MatchID: "semi1", WinnerID: "B", LoserID: "A"},
		{ID: "p2", UserID: "u1", TournamentID: "t1", MatchID: "semi2", WinnerID: "D", LoserID: "C"},
		{ID: "p3", UserID: "u1", TournamentID: "t1", MatchID: "final", WinnerID: "D", LoserID: "B"},
	}

	res, err := Compute(bets, preds, decidedMatches(), fullBook(t))
	require.NoError(t, err)

	assert.Equal(t, -20.0, res.Deltas["u1"])
	assert.Equal(t, 1, res.Voided)

	byMatch := map[string]Item{}
	for _, it := range res.Items {
		byMatch[it.MatchID] = it
	}
	assert.Equal(t, OutcomeLost, byMatch["semi1"].Outcome)
	assert.Equal(t, OutcomeLost, byMatch["semi2"].Outcome)
	assert.Equal(t, OutcomeVoided, byMatch["final"].Outcome)
	assert.Equal(t, 0.0, byMatch["final"].Delta)
}

// Cenário da aposta toda certa: cada crédito vale exatamente
// stake * quote(perdedor,vencedor) / quote(vencedor,perdedor).
func TestCompute_CorrectSweepScenario(t *testing.T) {
	bets := []Bet{{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10}}
	preds := []Prediction{
		{ID: "p1", UserID: "u1", TournamentID: "t1", MatchID: "semi1", WinnerID: "A", LoserID: "B"},
		{ID: "p2", UserID: "u1", TournamentID: "t1", MatchID: "semi2", WinnerID: "C", LoserID: "D"},
		{ID: "p3", UserID: "u1", TournamentID: "t1", MatchID: "final", WinnerID: "A", LoserID: "C"},
	}

	res, err := Compute(bets, preds, decidedMatches(), fullBook(t))
	require.NoError(t, err)

	perMatch := 10.0 * 2.0 / 1.5
	for _, it := range res.Items {
		assert.Equal(t, OutcomeWon, it.Outcome)
		assert.Equal(t, perMatch, it.Delta)
	}
	assert.InDelta(t, 3*perMatch, res.Deltas["u1"], 1e-9)
	assert.Zero(t, res.Voided)
}

// Usuários independentes acumulam separadamente.
func TestCompute_PerUserAccumulation(t *testing.T) {
	bets := []Bet{
		{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10},
		{ID: "b2", UserID: "u2", TournamentID: "t1", AmountPerMatch: 50},
	}
	preds := []Prediction{
		{ID: "p1", UserID: "u1", TournamentID: "t1", MatchID: "semi1", WinnerID: "A", LoserID: "B"},
		{ID: "p2", UserID: "u2", TournamentID: "t1", MatchID: "semi1", WinnerID: "B", LoserID: "A"},
	}

	res, err := Compute(bets, preds, decidedMatches(), fullBook(t))
	require.NoError(t, err)

	assert.Equal(t, 10.0*2.0/1.5, res.Deltas["u1"])
	assert.Equal(t, -50.0, res.Deltas["u2"])
}

func TestCompute_IncompleteResult(t *testing.T) {
	matches := decidedMatches()
	m := matches["final"]
	m.WinnerID = ""
	matches["final"] = m

	bets := []Bet{{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10}}
	preds := []Prediction{
		{ID: "p3", UserID: "u1", TournamentID: "t1", MatchID: "final", WinnerID: "A", LoserID: "C"},
	}

	_, err := Compute(bets, preds, matches, fullBook(t))
	var incomplete *IncompleteResultError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "final", incomplete.MatchID)
}

func TestCompute_MissingQuoteIsFatal(t *testing.T) {
	// Book sem o par da final.
	b, err := quotes.NewBook([]quotes.Entry{
		{TournamentID: "t1", CandidateID: "A", OpponentID: "B", Value: 1.5},
		{TournamentID: "t1", CandidateID: "B", OpponentID: "A", Value: 2.0},
		{TournamentID: "t1", CandidateID: "C", OpponentID: "D", Value: 1.5},
		{TournamentID: "t1", CandidateID: "D", OpponentID: "C", Value: 2.0},
	})
	require.NoError(t, err)

	bets := []Bet{{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10}}
	preds := []Prediction{
		{ID: "p3", UserID: "u1", TournamentID: "t1", MatchID: "final", WinnerID: "A", LoserID: "C"},
	}

	_, err = Compute(bets, preds, decidedMatches(), b)
	var missing *quotes.MissingQuoteError
	require.ErrorAs(t, err, &missing)
}

// Predições anuladas nunca mexem em saldo, mesmo quando o usuário só
// tem predições anuladas.
func TestCompute_VoidOnlyUserHasNoDelta(t *testing.T) {
	bets := []Bet{{ID: "b1", UserID: "u1", TournamentID: "t1", AmountPerMatch: 10}}
	preds := []Prediction{
		{ID: "p3", UserID: "u1", TournamentID: "t1", MatchID: "final", WinnerID: "D", LoserID: "B"},
	}

	res, err := Compute(bets, preds, decidedMatches(), fullBook(t))
	require.NoError(t, err)

	_, has := res.Deltas["u1"]
	assert.False(t, has)
	assert.Equal(t, 1, res.Voided)
}
