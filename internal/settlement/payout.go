package settlement

import (
	"fmt"
	"time"
)

// Payout calcula o valor pago por uma unidade vencedora: stake × ratio.
// Aritmética inteira em paise; dinheiro nunca passa por float.
func Payout(stakePaise, ratio int64) int64 {
	return stakePaise * ratio
}

// Grade combina avaliação e cálculo de payout em um SettlementResult.
// Para crossing, o payout total é a soma dos payouts das combinações que
// bateram, cada uma sobre sua própria fração de stake.
func Grade(bet Bet, result DeclaredResult, cfg PayoutConfig) (SettlementResult, error) {
	out, err := Evaluate(bet, result)
	if err != nil {
		return SettlementResult{}, err
	}

	ratio, ok := cfg.Ratio(bet.Type)
	if !ok {
		return SettlementResult{}, fmt.Errorf("no payout ratio for market %q bet type %q", cfg.Market, bet.Type)
	}

	res := SettlementResult{
		BetID:     bet.ID,
		Outcome:   StatusLost,
		AppliedAt: time.Now().UTC(),
	}

	switch bet.Type {
	case BetCrossing:
		for i := range out.Combos {
			if out.Combos[i].Won {
				out.Combos[i].PayoutPaise = Payout(out.Combos[i].StakePaise, ratio)
				res.PayoutPaise += out.Combos[i].PayoutPaise
			}
		}
		res.Combos = out.Combos
		if out.Won {
			res.Outcome = StatusWon
		}
	default:
		if out.Won {
			res.Outcome = StatusWon
			res.PayoutPaise = Payout(bet.StakePaise, ratio)
		}
	}

	return res, nil
}
