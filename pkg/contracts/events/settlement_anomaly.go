package events

import "time"

// Tipos de anomalia reportadas durante a liquidação.
const (
	AnomalyMalformedSelection = "malformed_selection"
	AnomalyPayoutPending      = "payout_pending"
)

// Anomalia detectada durante a liquidação de um draw.
// Sink para reconciliação manual; nunca interrompe o batch.
type SettlementAnomaly struct {
	DrawID      string    `json:"draw_id"`
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"` // malformed_selection | payout_pending
	Detail      string    `json:"detail"`
	AmountPaise int64     `json:"amount_paise,omitempty"` // unpaid amount when kind=payout_pending
	Ts          time.Time `json:"ts"`
}
