package events

import "time"

// Evento emitido pelo settlement-worker após liquidar um torneio.
type TournamentSettled struct {
	TournamentID string    `json:"tournamentId"`
	Name         string    `json:"name"`
	Users        int       `json:"users"`       // usuários com saldo ajustado
	Predictions  int       `json:"predictions"` // predições liquidadas (incluindo anuladas)
	Ts           time.Time `json:"ts"`
}
