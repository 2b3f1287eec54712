package dto

type AccountResponse struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username,omitempty"`
	Balance  float64 `json:"balance"`
}
