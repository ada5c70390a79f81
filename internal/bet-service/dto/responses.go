package dto

type PlaceBetResponse struct {
	BetID   string `json:"betId"`
	Status  string `json:"status"` // PENDING
	Message string `json:"message,omitempty"`
}

type BetStatusResponse struct {
	BetID         string `json:"betId"`
	Status        string `json:"status"`
	PayoutPaise   int64  `json:"payout_paise"`
	PayoutPending bool   `json:"payout_pending,omitempty"`
}
