package repo

import (
	"context"
	"database/sql"
	"sort"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/internal/quotes"
	"github.com/radieske/bracket-bet-platform/internal/settlement-worker/engine"
)

// Postgres reúne as leituras de liquidação e a aplicação transacional dos
// resultados no ledger
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// FinishedUnsettled lista torneios finalizados cujo desfecho ainda não foi
// aplicado ao ledger
func (p *Postgres) FinishedUnsettled(ctx context.Context) ([]bracket.Tournament, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, subscriptions_closed, started, finished, outcome_computed
		FROM tournaments
		WHERE finished=true AND outcome_computed=false
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bracket.Tournament
	for rows.Next() {
		var t bracket.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.SubscriptionsClosed, &t.Started, &t.Finished, &t.OutcomeComputed); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MatchesOf carrega todas as partidas de um torneio
func (p *Postgres) MatchesOf(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, tournament_id,
		       player1_id, player1_prereq_match_id, player1_is_prereq_loser,
		       player2_id, player2_prereq_match_id, player2_is_prereq_loser,
		       winner_id, started
		FROM matches WHERE tournament_id=$1
		ORDER BY id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bracket.Match
	for rows.Next() {
		var m bracket.Match
		var p1, p1pre, p2, p2pre, winner sql.NullString
		var p1loser, p2loser bool
		if err := rows.Scan(&m.ID, &m.TournamentID,
			&p1, &p1pre, &p1loser,
			&p2, &p2pre, &p2loser,
			&winner, &m.Started); err != nil {
			return nil, err
		}
		m.Slots[0] = bracket.Slot{PlayerID: p1.String, PrereqMatchID: p1pre.String, WantsLoser: p1loser}
		m.Slots[1] = bracket.Slot{PlayerID: p2.String, PrereqMatchID: p2pre.String, WantsLoser: p2loser}
		m.WinnerID = winner.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// PlayersOf devolve o mapa id -> nome de exibição dos participantes
func (p *Postgres) PlayersOf(ctx context.Context, tournamentID string) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT player_id, display_name FROM participants WHERE tournament_id=$1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

// BetsForTournament lista as apostas do torneio
func (p *Postgres) BetsForTournament(ctx context.Context, tournamentID string) ([]engine.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, tournament_id, amount_per_match
		FROM bets WHERE tournament_id=$1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Bet
	for rows.Next() {
		var b engine.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.TournamentID, &b.AmountPerMatch); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PredictionsForTournament lista todas as predições registradas no torneio
func (p *Postgres) PredictionsForTournament(ctx context.Context, tournamentID string) ([]engine.Prediction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, tournament_id, match_id, winner_id, loser_id
		FROM match_predictions WHERE tournament_id=$1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Prediction
	for rows.Next() {
		var pr engine.Prediction
		if err := rows.Scan(&pr.ID, &pr.UserID, &pr.TournamentID, &pr.MatchID, &pr.WinnerID, &pr.LoserID); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// QuotesForTournament carrega as cotações direcionais do torneio
func (p *Postgres) QuotesForTournament(ctx context.Context, tournamentID string) ([]quotes.Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT tournament_id, candidate_id, opponent_id, value
		FROM tournament_quotes WHERE tournament_id=$1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quotes.Entry
	for rows.Next() {
		var e quotes.Entry
		if err := rows.Scan(&e.TournamentID, &e.CandidateID, &e.OpponentID, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplySettlement aplica os deltas de saldo e marca o torneio como
// liquidado em uma única transação. O UPDATE condicional faz o papel de
// latch: se outra execução já liquidou, nenhuma linha é afetada e nada é
// creditado de novo.
func (p *Postgres) ApplySettlement(ctx context.Context, tournamentID string, deltas map[string]float64) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE tournaments SET outcome_computed=true
		WHERE id=$1 AND outcome_computed=false`, tournamentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	// Ordem estável de usuários para evitar deadlock entre liquidações
	// concorrentes.
	userIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		var balance float64
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE user_id=$1 FOR UPDATE`, userID).
			Scan(&balance)
		if err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance=$1 WHERE user_id=$2`,
			balance+deltas[userID], userID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
