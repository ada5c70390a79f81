package events

import "time"

// Evento publicado quando um resultado é declarado para um draw.
// Published on the "result_declared" topic; consumed by the settlement-worker.
type ResultDeclared struct {
	DrawID        string    `json:"draw_id"`
	Market        string    `json:"market"`
	WinningNumber string    `json:"winning_number"` // exactly two decimal digits, "00".."99"
	Method        string    `json:"method"`         // "manual" | "automatic"
	DeclaredBy    string    `json:"declared_by"`
	DeclaredAt    time.Time `json:"declared_at"`
}
