package settlement

import "fmt"

// Outcome é o resultado puro da avaliação de uma aposta contra um resultado
// declarado, antes do cálculo de payout.
type Outcome struct {
	Won    bool
	Combos []ComboResult // somente crossing; payout preenchido depois
}

// Evaluate decide vitória/derrota de uma aposta dado o número vencedor.
// Função pura e determinística; pré-requisito para re-execuções
// idempotentes do batch.
//
// A comparação é sempre por caractere, nunca numérica, para que "05" e "5"
// jamais se confundam.
func Evaluate(bet Bet, result DeclaredResult) (Outcome, error) {
	if !IsTwoDigits(result.WinningNumber) {
		return Outcome{}, ErrInvalidWinningNumber
	}
	if err := bet.Selection.Validate(bet.Type); err != nil {
		return Outcome{}, err
	}

	switch bet.Type {
	case BetJodi:
		return Outcome{Won: bet.Selection.Number == result.WinningNumber}, nil

	case BetHaruf:
		want := result.WinningNumber[0]
		if bet.Selection.Position == PositionLast {
			want = result.WinningNumber[1]
		}
		return Outcome{Won: bet.Selection.Digit[0] == want}, nil

	case BetCrossing:
		// Cada combinação é avaliada como se fosse uma jodi independente.
		// A aposta vence se ao menos uma combinação bater.
		out := Outcome{Combos: make([]ComboResult, 0, len(bet.Selection.Combinations))}
		for _, c := range bet.Selection.Combinations {
			won := c.Number == result.WinningNumber
			out.Combos = append(out.Combos, ComboResult{
				Number:     c.Number,
				StakePaise: c.StakePaise,
				Won:        won,
			})
			if won {
				out.Won = true
			}
		}
		return out, nil
	}

	return Outcome{}, fmt.Errorf("%w: unknown bet type %q", ErrMalformedSelection, bet.Type)
}
