package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/bracket-bet-platform/internal/bracket-service/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListTournaments(ctx context.Context) ([]dto.TournamentView, error) {
	const q = `
		SELECT id, name, subscriptions_closed, started, finished
		FROM tournaments
		ORDER BY name;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.TournamentView
	for rows.Next() {
		var t dto.TournamentView
		if err := rows.Scan(&t.ID, &t.Name, &t.SubscriptionsClosed, &t.Started, &t.Finished); err != nil {
			return nil, err
		}
		t.BetsOpen = !t.SubscriptionsClosed && !t.Started && !t.Finished
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetMatchesByTournament(ctx context.Context, tournamentID string) ([]dto.MatchView, error) {
	const q = `
		SELECT m.id,
		       m.player1_id, p1.display_name, m.player1_prereq_match_id, m.player1_is_prereq_loser,
		       m.player2_id, p2.display_name, m.player2_prereq_match_id, m.player2_is_prereq_loser,
		       m.winner_id, m.started
		FROM matches m
		LEFT JOIN participants p1 ON p1.tournament_id = m.tournament_id AND p1.player_id = m.player1_id
		LEFT JOIN participants p2 ON p2.tournament_id = m.tournament_id AND p2.player_id = m.player2_id
		WHERE m.tournament_id = $1
		ORDER BY m.id;
	`
	rows, err := r.DB.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.MatchView
	for rows.Next() {
		var m dto.MatchView
		var p1, p1name, p1pre, p2, p2name, p2pre, winner sql.NullString
		var p1loser, p2loser bool
		if err := rows.Scan(&m.ID,
			&p1, &p1name, &p1pre, &p1loser,
			&p2, &p2name, &p2pre, &p2loser,
			&winner, &m.Started); err != nil {
			return nil, err
		}
		m.Slots[0] = dto.SlotView{PlayerID: p1.String, PlayerName: p1name.String, PrereqMatchID: p1pre.String, WantsLoser: p1loser}
		m.Slots[1] = dto.SlotView{PlayerID: p2.String, PlayerName: p2name.String, PrereqMatchID: p2pre.String, WantsLoser: p2loser}
		m.WinnerID = winner.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetQuotesByTournament(ctx context.Context, tournamentID string) ([]dto.QuoteView, error) {
	const q = `
		SELECT q.candidate_id, pc.display_name, q.opponent_id, po.display_name, q.value
		FROM tournament_quotes q
		LEFT JOIN participants pc ON pc.tournament_id = q.tournament_id AND pc.player_id = q.candidate_id
		LEFT JOIN participants po ON po.tournament_id = q.tournament_id AND po.player_id = q.opponent_id
		WHERE q.tournament_id = $1
		ORDER BY q.candidate_id, q.opponent_id;
	`
	rows, err := r.DB.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.QuoteView
	for rows.Next() {
		var v dto.QuoteView
		var cname, oname sql.NullString
		if err := rows.Scan(&v.CandidateID, &cname, &v.OpponentID, &oname, &v.Value); err != nil {
			return nil, err
		}
		v.CandidateName = cname.String
		v.OpponentName = oname.String
		out = append(out, v)
	}
	return out, rows.Err()
}
