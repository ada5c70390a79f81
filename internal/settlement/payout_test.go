package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func galiConfig() PayoutConfig {
	return PayoutConfig{
		Market: "gali",
		Ratios: map[BetType]int64{
			BetJodi:     95,
			BetHaruf:    9,
			BetCrossing: 95,
		},
	}
}

func TestPayoutMonotonicInStake(t *testing.T) {
	// Dobrar o stake dobra o payout, ratio fixo.
	assert.Equal(t, int64(95000), Payout(1000, 95))
	assert.Equal(t, int64(190000), Payout(2000, 95))
	assert.Equal(t, 2*Payout(1000, 95), Payout(2000, 95))
}

func TestGradeJodiWin(t *testing.T) {
	// Cenário: jodi "45", declarado "45" → WON, payout = stake × jodiRatio.
	bet := jodiBet("45")
	res, err := Grade(bet, declared("45"), galiConfig())
	require.NoError(t, err)

	assert.Equal(t, StatusWon, res.Outcome)
	assert.Equal(t, bet.StakePaise*95, res.PayoutPaise)
	assert.False(t, res.PayoutPending)
}

func TestGradeJodiLossPaysZero(t *testing.T) {
	res, err := Grade(jodiBet("45"), declared("46"), galiConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusLost, res.Outcome)
	assert.Zero(t, res.PayoutPaise)
}

func TestGradeHaruf(t *testing.T) {
	// Cenários: haruf "4" first vs "45" vence; haruf "4" last vs "45" perde.
	won, err := Grade(harufBet("4", PositionFirst), declared("45"), galiConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusWon, won.Outcome)
	assert.Equal(t, int64(9000), won.PayoutPaise)

	lost, err := Grade(harufBet("4", PositionLast), declared("45"), galiConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusLost, lost.Outcome)
	assert.Zero(t, lost.PayoutPaise)
}

func TestGradeCrossingSumsOnlyMatchingCombos(t *testing.T) {
	// Cenário: ["33","35","32","53","55","52"] com 10 cada, declarado "35" →
	// só "35" paga; payout total = 10 × crossingRatio.
	combos := []Combination{
		{Number: "33", StakePaise: 1000},
		{Number: "35", StakePaise: 1000},
		{Number: "32", StakePaise: 1000},
		{Number: "53", StakePaise: 1000},
		{Number: "55", StakePaise: 1000},
		{Number: "52", StakePaise: 1000},
	}
	res, err := Grade(crossingBet(combos), declared("35"), galiConfig())
	require.NoError(t, err)

	assert.Equal(t, StatusWon, res.Outcome)
	assert.Equal(t, int64(95000), res.PayoutPaise)

	var sumWinners int64
	for _, c := range res.Combos {
		if c.Won {
			sumWinners += c.PayoutPaise
		} else {
			assert.Zero(t, c.PayoutPaise)
		}
	}
	assert.Equal(t, res.PayoutPaise, sumWinners)
}

func TestGradeCrossingMultipleWinningCombos(t *testing.T) {
	// Combinação repetida paga por ocorrência: a lista armazenada manda.
	combos := []Combination{
		{Number: "35", StakePaise: 1000},
		{Number: "35", StakePaise: 500},
		{Number: "53", StakePaise: 1000},
	}
	res, err := Grade(crossingBet(combos), declared("35"), galiConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusWon, res.Outcome)
	assert.Equal(t, int64(1500)*95, res.PayoutPaise)
}

func TestGradeCrossingZeroMatchesIsLost(t *testing.T) {
	combos := []Combination{
		{Number: "11", StakePaise: 1000},
		{Number: "22", StakePaise: 1000},
	}
	res, err := Grade(crossingBet(combos), declared("35"), galiConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusLost, res.Outcome)
	assert.Zero(t, res.PayoutPaise)
}

func TestGradeMissingRatioIsError(t *testing.T) {
	cfg := PayoutConfig{Market: "gali", Ratios: map[BetType]int64{BetJodi: 95}}
	_, err := Grade(harufBet("4", PositionFirst), declared("45"), cfg)
	assert.Error(t, err)
}
