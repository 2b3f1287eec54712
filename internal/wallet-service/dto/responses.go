package dto

type AccountResponse struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username,omitempty"`
	Balance  float64 `json:"balance"`
}

type RankingEntry struct {
	Position int     `json:"position"`
	UserID   string  `json:"userId"`
	Username string  `json:"username,omitempty"`
	Balance  float64 `json:"balance"`
}

type RankingResponse struct {
	Entries []RankingEntry `json:"entries"`
}
