package settlement

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedSelection indica payload de seleção inconsistente com o tipo.
	ErrMalformedSelection = errors.New("malformed selection")

	// ErrInvalidWinningNumber indica número vencedor fora do formato "00".."99".
	ErrInvalidWinningNumber = errors.New("winning number must be exactly two digits")
)

// IsTwoDigits valida o formato canônico de um número matka ("00".."99").
func IsTwoDigits(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// ParsePosition normaliza a posição haruf, traduzindo os aliases legados
// andhar/bahar uma única vez, na borda. O engine só enxerga first/last.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "andhar":
		return PositionFirst, nil
	case "last", "bahar":
		return PositionLast, nil
	default:
		return "", fmt.Errorf("%w: position %q", ErrMalformedSelection, s)
	}
}

// Validate confere se a seleção é consistente com o tipo da aposta.
// Chamada na colocação da aposta e novamente na liquidação: registros antigos
// corrompidos não podem derrubar o batch inteiro.
func (s Selection) Validate(t BetType) error {
	switch t {
	case BetJodi:
		if !IsTwoDigits(s.Number) {
			return fmt.Errorf("%w: jodi number %q", ErrMalformedSelection, s.Number)
		}
	case BetHaruf:
		if len(s.Digit) != 1 || s.Digit[0] < '0' || s.Digit[0] > '9' {
			return fmt.Errorf("%w: haruf digit %q", ErrMalformedSelection, s.Digit)
		}
		if s.Position != PositionFirst && s.Position != PositionLast {
			return fmt.Errorf("%w: haruf position %q", ErrMalformedSelection, s.Position)
		}
	case BetCrossing:
		if len(s.Combinations) == 0 {
			return fmt.Errorf("%w: crossing without combinations", ErrMalformedSelection)
		}
		for _, c := range s.Combinations {
			if !IsTwoDigits(c.Number) {
				return fmt.Errorf("%w: crossing combination %q", ErrMalformedSelection, c.Number)
			}
			if c.StakePaise <= 0 {
				return fmt.Errorf("%w: crossing combination %s stake %d", ErrMalformedSelection, c.Number, c.StakePaise)
			}
		}
	default:
		return fmt.Errorf("%w: unknown bet type %q", ErrMalformedSelection, t)
	}
	return nil
}
