package dto

type TournamentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchViewResponse struct {
	MatchID     string `json:"match_id"`
	Player1ID   string `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   string `json:"player2_id"`
	Player2Name string `json:"player2_name"`
	Index       int    `json:"index"`
	Total       int    `json:"total"`
}

type SessionResponse struct {
	State        string             `json:"state"`
	TournamentID string             `json:"tournament_id,omitempty"`
	Match        *MatchViewResponse `json:"match,omitempty"`
	Predictions  int                `json:"predictions,omitempty"`
	Message      string             `json:"message,omitempty"`
}

type BetPlacedResponse struct {
	BetID          string `json:"bet_id"`
	TournamentID   string `json:"tournament_id"`
	AmountPerMatch int64  `json:"amount_per_match"`
	Predictions    int    `json:"predictions"`
	TotalExposure  int64  `json:"total_exposure"`
	Status         string `json:"status"`
}
