package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountPaise int64  `json:"amount_paise"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

type DebitRequest struct {
	UserID      string `json:"userId"`
	AmountPaise int64  `json:"amount_paise"`
	ExternalRef string `json:"external_ref"` // betId
}

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountPaise int64  `json:"amount_paise"`
	Category    string `json:"category"`     // "winning"
	ExternalRef string `json:"external_ref"` // betId; chave de idempotência
}
