package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

var validate = validator.New()

// CombinationPayload é uma combinação crossing no payload de entrada.
type CombinationPayload struct {
	Number     string `json:"number" validate:"required,len=2,number"`
	StakePaise int64  `json:"stake_paise" validate:"required,gt=0"`
}

// PlaceBetRequest é o payload de colocação de aposta. O campo de seleção
// aceita os formatos legados (position "andhar"/"bahar") e é normalizado na
// borda, antes de qualquer persistência.
type PlaceBetRequest struct {
	UserID     string `json:"userId" validate:"required"`
	DrawID     string `json:"drawId" validate:"required"`
	Market     string `json:"market" validate:"required"`
	BetType    string `json:"bet_type" validate:"required,oneof=jodi haruf crossing"`
	StakePaise int64  `json:"stake_paise" validate:"required,gt=0"`

	// jodi
	Number string `json:"number,omitempty"`
	// haruf (aceita aliases legados andhar/bahar)
	Digit    string `json:"digit,omitempty"`
	Position string `json:"position,omitempty"`
	// crossing
	Combinations []CombinationPayload `json:"combinations,omitempty"`
}

// Validate confere o shape do request via validator.
func (r *PlaceBetRequest) Validate() error {
	return validate.Struct(r)
}

// Normalize traduz o payload para a Selection canônica do core e valida a
// consistência tipo/seleção. Aliases andhar/bahar viram first/last aqui, uma
// única vez; o engine nunca enxerga o formato legado.
func (r *PlaceBetRequest) Normalize() (settlement.Selection, error) {
	t := settlement.BetType(r.BetType)
	var sel settlement.Selection

	switch t {
	case settlement.BetJodi:
		sel.Number = r.Number

	case settlement.BetHaruf:
		pos, err := settlement.ParsePosition(r.Position)
		if err != nil {
			return settlement.Selection{}, err
		}
		sel.Digit = r.Digit
		sel.Position = pos

	case settlement.BetCrossing:
		var total int64
		sel.Combinations = make([]settlement.Combination, 0, len(r.Combinations))
		for _, c := range r.Combinations {
			sel.Combinations = append(sel.Combinations, settlement.Combination{
				Number:     c.Number,
				StakePaise: c.StakePaise,
			})
			total += c.StakePaise
		}
		// O stake da aposta é a soma das frações das combinações.
		if total != r.StakePaise {
			return settlement.Selection{}, fmt.Errorf("%w: combination stakes sum %d != stake %d",
				settlement.ErrMalformedSelection, total, r.StakePaise)
		}
	}

	if err := sel.Validate(t); err != nil {
		return settlement.Selection{}, err
	}
	return sel, nil
}
