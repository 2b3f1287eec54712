package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
)

// Postgres implementa a persistência de apostas e a leitura do estado de
// torneios sincronizado pelo bracket-sync-worker
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// OpenTournaments lista torneios que ainda aceitam apostas
func (p *Postgres) OpenTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, subscriptions_closed, started, finished, outcome_computed
		FROM tournaments
		WHERE subscriptions_closed=false AND started=false AND finished=false
		ORDER BY name`)
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

// TournamentByID carrega o estado corrente de um torneio
func (p *Postgres) TournamentByID(ctx context.Context, id string) (bracket.Tournament, error) {
	var t bracket.Tournament
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, subscriptions_closed, started, finished, outcome_computed
		FROM tournaments WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.SubscriptionsClosed, &t.Started, &t.Finished, &t.OutcomeComputed)
	return t, err
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
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatch(rows *sql.Rows) (bracket.Match, error) {
	var m bracket.Match
	var p1, p1pre, p2, p2pre, winner sql.NullString
	var p1loser, p2loser bool
	if err := rows.Scan(&m.ID, &m.TournamentID,
		&p1, &p1pre, &p1loser,
		&p2, &p2pre, &p2loser,
		&winner, &m.Started); err != nil {
		return bracket.Match{}, err
	}
	m.Slots[0] = bracket.Slot{PlayerID: p1.String, PrereqMatchID: p1pre.String, WantsLoser: p1loser}
	m.Slots[1] = bracket.Slot{PlayerID: p2.String, PrereqMatchID: p2pre.String, WantsLoser: p2loser}
	m.WinnerID = winner.String
	return m, nil
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

// HasBet verifica se o usuário já tem aposta no torneio (limite de uma)
func (p *Postgres) HasBet(ctx context.Context, userID, tournamentID string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx,
		`SELECT 1 FROM bets WHERE user_id=$1 AND tournament_id=$2 LIMIT 1`,
		userID, tournamentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateBetWithPredictions persiste a aposta e todas as predições em uma
// única transação. Tudo ou nada: persistência parcial nunca é observável.
func (p *Postgres) CreateBetWithPredictions(ctx context.Context, b Bet, preds []Prediction) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, tournament_id, amount_per_match)
		VALUES ($1,$2,$3,$4)`,
		b.ID, b.UserID, b.TournamentID, b.AmountPerMatch); err != nil {
		return err
	}

	for _, pr := range preds {
		id := pr.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO match_predictions (id, user_id, tournament_id, match_id, winner_id, loser_id)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			id, pr.UserID, pr.TournamentID, pr.MatchID, pr.WinnerID, pr.LoserID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
