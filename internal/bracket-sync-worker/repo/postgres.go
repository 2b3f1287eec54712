package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
)

// Postgres materializa o estado do provedor no banco local. Os upserts
// nunca tocam outcome_computed: o latch de liquidação pertence ao
// settlement-worker.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// UpsertTournament insere ou atualiza o torneio. finished só anda para
// frente: uma leitura atrasada do provedor não "desencerra" um torneio.
func (p *Postgres) UpsertTournament(ctx context.Context, t bracket.Tournament) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, subscriptions_closed, started, finished, outcome_computed)
		VALUES ($1,$2,$3,$4,$5,false)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			subscriptions_closed=EXCLUDED.subscriptions_closed,
			started=EXCLUDED.started,
			finished=tournaments.finished OR EXCLUDED.finished`,
		t.ID, t.Name, t.SubscriptionsClosed, t.Started, t.Finished)
	return err
}

// UpsertMatches grava as partidas do torneio em uma transação.
func (p *Postgres) UpsertMatches(ctx context.Context, matches []bracket.Match) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range matches {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO matches (id, tournament_id,
				player1_id, player1_prereq_match_id, player1_is_prereq_loser,
				player2_id, player2_prereq_match_id, player2_is_prereq_loser,
				winner_id, started)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (id) DO UPDATE SET
				player1_id=EXCLUDED.player1_id,
				player2_id=EXCLUDED.player2_id,
				winner_id=EXCLUDED.winner_id,
				started=EXCLUDED.started`,
			m.ID, m.TournamentID,
			nullable(m.Slots[0].PlayerID), nullable(m.Slots[0].PrereqMatchID), m.Slots[0].WantsLoser,
			nullable(m.Slots[1].PlayerID), nullable(m.Slots[1].PrereqMatchID), m.Slots[1].WantsLoser,
			nullable(m.WinnerID), m.Started); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertParticipants grava os nomes de exibição dos jogadores.
func (p *Postgres) UpsertParticipants(ctx context.Context, tournamentID string, names map[string]string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for playerID, name := range names {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO participants (tournament_id, player_id, display_name)
			VALUES ($1,$2,$3)
			ON CONFLICT (tournament_id, player_id) DO UPDATE SET
				display_name=EXCLUDED.display_name`,
			tournamentID, playerID, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DecidedWinners devolve o mapa partida -> vencedor do estado local, usado
// para detectar quais partidas foram decididas desde o último sync.
func (p *Postgres) DecidedWinners(ctx context.Context, tournamentID string) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, winner_id FROM matches
		WHERE tournament_id=$1 AND winner_id IS NOT NULL`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, winner string
		if err := rows.Scan(&id, &winner); err != nil {
			return nil, err
		}
		out[id] = winner
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
