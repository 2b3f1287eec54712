package events

type BetPlaced struct {
	BetID          string `json:"bet_id"`
	UserID         string `json:"user_id"`
	TournamentID   string `json:"tournament_id"`
	AmountPerMatch int64  `json:"amount_per_match"`
	Predictions    int    `json:"predictions"`
	TotalExposure  int64  `json:"total_exposure"` // amount_per_match * predictions
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
