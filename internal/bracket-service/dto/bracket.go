package dto

// TournamentView representa um torneio na API de leitura
type TournamentView struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	SubscriptionsClosed bool   `json:"subscriptionsClosed"`
	Started             bool   `json:"started"`
	Finished            bool   `json:"finished"`
	BetsOpen            bool   `json:"betsOpen"`
}

// SlotView representa um lado de uma partida: jogador fixo ou vaga
// dependente de outra partida
type SlotView struct {
	PlayerID      string `json:"playerId,omitempty"`
	PlayerName    string `json:"playerName,omitempty"`
	PrereqMatchID string `json:"prereqMatchId,omitempty"`
	WantsLoser    bool   `json:"wantsLoser,omitempty"`
}

// MatchView representa uma partida da chave
type MatchView struct {
	ID       string      `json:"id"`
	Slots    [2]SlotView `json:"slots"`
	WinnerID string      `json:"winnerId,omitempty"`
	Started  bool        `json:"started"`
}

// QuoteView representa uma cotação direcional: valor pago por unidade
// apostada caso Candidate vença Opponent
type QuoteView struct {
	CandidateID   string  `json:"candidateId"`
	CandidateName string  `json:"candidateName,omitempty"`
	OpponentID    string  `json:"opponentId"`
	OpponentName  string  `json:"opponentName,omitempty"`
	Value         float64 `json:"value"`
}
