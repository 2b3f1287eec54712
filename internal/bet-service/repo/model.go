package repo

import "time"

// Bet é o modelo persistido no Postgres. O valor é por partida; a
// exposição total é amount_per_match * número de predições.
type Bet struct {
	ID             string
	UserID         string
	TournamentID   string
	AmountPerMatch int64
	CreatedAt      time.Time
}

// Prediction é a escolha do usuário para uma partida. O par
// (winner, loser) são os dois candidatos da partida como resolvidos no
// momento da aposta — podem divergir dos jogadores reais depois.
type Prediction struct {
	ID           string
	UserID       string
	TournamentID string
	MatchID      string
	WinnerID     string
	LoserID      string
}
