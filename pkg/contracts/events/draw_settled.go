package events

import "time"

// Evento emitido pelo settlement-worker após liquidar todas as apostas de um draw.
type DrawSettled struct {
	DrawID          string    `json:"draw_id"`
	WinningNumber   string    `json:"winning_number"`
	BetsTotal       int       `json:"bets_total"`
	BetsWon         int       `json:"bets_won"`
	TotalPayoutPaise int64    `json:"total_payout_paise"`
	SettledAt       time.Time `json:"settled_at"`
}
