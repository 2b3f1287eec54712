package events

import "time"

// Evento publicado pelo bracket-sync-worker quando o estado de um torneio
// muda no provedor (partida decidida, torneio encerrado).
type BracketUpdate struct {
	TournamentID string    `json:"tournament_id"`
	Name         string    `json:"name"`
	Finished     bool      `json:"finished"`
	DecidedIDs   []string  `json:"decided_ids,omitempty"` // partidas decididas nesta rodada de sync
	UpdatedAt    time.Time `json:"updated_at"`
	Source       string    `json:"source"` // "bracket-sync-worker"
}
