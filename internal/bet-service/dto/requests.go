package dto

type StartSessionRequest struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username,omitempty"`
	TournamentID string `json:"tournament_id"`
}

type PickRequest struct {
	UserID   string `json:"user_id"`
	WinnerID string `json:"winner_id"`
}

type StakeRequest struct {
	UserID         string `json:"user_id"`
	AmountPerMatch int64  `json:"amount_per_match"`
}
