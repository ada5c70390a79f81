package dto

type DebitRequest struct {
	UserID      string `json:"userId"`
	AmountPaise int64  `json:"amount_paise"`
	ExternalRef string `json:"external_ref"` // betId
}
