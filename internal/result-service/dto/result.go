package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// DeclareResultRequest é o payload administrativo de declaração de resultado.
type DeclareResultRequest struct {
	DrawID        string `json:"drawId" validate:"required"`
	Market        string `json:"market" validate:"required"`
	WinningNumber string `json:"winning_number" validate:"required,len=2,number"`
	DeclaredBy    string `json:"declared_by" validate:"required"`
}

func (r *DeclareResultRequest) Validate() error {
	return validate.Struct(r)
}

type DeclareResultResponse struct {
	DrawID        string `json:"drawId"`
	WinningNumber string `json:"winning_number"`
	Method        string `json:"method"`
	DeclaredAt    string `json:"declared_at"`
}

// Draw é um draw agendado no read API.
type Draw struct {
	DrawID    string `json:"drawId"`
	Market    string `json:"market"`
	DrawDate  string `json:"draw_date"`
	Session   string `json:"session"`
	CloseTime string `json:"close_time"`
	Status    string `json:"status"`
}

// Result é um resultado declarado no read API.
type Result struct {
	DrawID        string `json:"drawId"`
	Market        string `json:"market"`
	WinningNumber string `json:"winning_number"`
	Method        string `json:"method"`
	DeclaredBy    string `json:"declared_by"`
	DeclaredAt    string `json:"declared_at"`
}
