package settlement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jodiBet(number string) Bet {
	return Bet{
		ID:         "bet-jodi-" + number,
		UserID:     "user-1",
		DrawID:     "draw-1",
		Market:     "gali",
		Type:       BetJodi,
		StakePaise: 1000,
		Selection:  Selection{Number: number},
		Status:     StatusPending,
	}
}

func harufBet(digit string, pos Position) Bet {
	return Bet{
		ID:         "bet-haruf",
		UserID:     "user-1",
		DrawID:     "draw-1",
		Market:     "gali",
		Type:       BetHaruf,
		StakePaise: 1000,
		Selection:  Selection{Digit: digit, Position: pos},
		Status:     StatusPending,
	}
}

func crossingBet(combos []Combination) Bet {
	var stake int64
	for _, c := range combos {
		stake += c.StakePaise
	}
	return Bet{
		ID:         "bet-crossing",
		UserID:     "user-1",
		DrawID:     "draw-1",
		Market:     "gali",
		Type:       BetCrossing,
		StakePaise: stake,
		Selection:  Selection{Combinations: combos},
		Status:     StatusPending,
	}
}

func declared(number string) DeclaredResult {
	return DeclaredResult{DrawID: "draw-1", Market: "gali", WinningNumber: number, Method: "manual"}
}

func TestEvaluateJodiExactMatchOverFullRange(t *testing.T) {
	// Jodi vence sse selection == winningNumber, para todo "00".."99".
	for i := 0; i < 100; i++ {
		sel := fmt.Sprintf("%02d", i)
		for j := 0; j < 100; j++ {
			win := fmt.Sprintf("%02d", j)
			out, err := Evaluate(jodiBet(sel), declared(win))
			require.NoError(t, err)
			assert.Equal(t, sel == win, out.Won, "selection %s vs winning %s", sel, win)
		}
	}
}

func TestEvaluateJodiCharacterCompareNotNumeric(t *testing.T) {
	// "5" não é "05": seleção de um dígito é malformada, nunca vencedora.
	bet := jodiBet("5")
	_, err := Evaluate(bet, declared("05"))
	assert.ErrorIs(t, err, ErrMalformedSelection)
}

func TestEvaluateHaruf(t *testing.T) {
	tests := []struct {
		name    string
		digit   string
		pos     Position
		winning string
		won     bool
	}{
		{"first digit matches", "4", PositionFirst, "45", true},
		{"last position does not see first digit", "4", PositionLast, "45", false},
		{"last digit matches", "5", PositionLast, "45", true},
		{"first position does not see last digit", "5", PositionFirst, "45", false},
		{"leading zero first", "0", PositionFirst, "07", true},
		{"leading zero last", "0", PositionLast, "70", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Evaluate(harufBet(tt.digit, tt.pos), declared(tt.winning))
			require.NoError(t, err)
			assert.Equal(t, tt.won, out.Won)
		})
	}
}

func TestEvaluateHarufDependsOnlyOnChosenPosition(t *testing.T) {
	// Mudar o outro dígito do número vencedor nunca altera o desfecho.
	for d := 0; d < 10; d++ {
		digit := fmt.Sprintf("%d", d)
		for other := 0; other < 10; other++ {
			first, err := Evaluate(harufBet(digit, PositionFirst), declared(fmt.Sprintf("%d%d", d, other)))
			require.NoError(t, err)
			assert.True(t, first.Won, "first position digit %s, other %d", digit, other)

			last, err := Evaluate(harufBet(digit, PositionLast), declared(fmt.Sprintf("%d%d", other, d)))
			require.NoError(t, err)
			assert.True(t, last.Won, "last position digit %s, other %d", digit, other)
		}
	}
}

func TestEvaluateCrossingPartialWin(t *testing.T) {
	combos := []Combination{
		{Number: "33", StakePaise: 1000},
		{Number: "35", StakePaise: 1000},
		{Number: "32", StakePaise: 1000},
		{Number: "53", StakePaise: 1000},
		{Number: "55", StakePaise: 1000},
		{Number: "52", StakePaise: 1000},
	}
	out, err := Evaluate(crossingBet(combos), declared("35"))
	require.NoError(t, err)

	assert.True(t, out.Won)
	require.Len(t, out.Combos, 6)
	var winners int
	for _, c := range out.Combos {
		if c.Won {
			winners++
			assert.Equal(t, "35", c.Number)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestEvaluateCrossingAllLose(t *testing.T) {
	combos := []Combination{
		{Number: "12", StakePaise: 500},
		{Number: "21", StakePaise: 500},
	}
	out, err := Evaluate(crossingBet(combos), declared("99"))
	require.NoError(t, err)
	assert.False(t, out.Won)
	for _, c := range out.Combos {
		assert.False(t, c.Won)
	}
}

func TestEvaluateCrossingUsesStoredCombinationsOnly(t *testing.T) {
	// A lista armazenada é autoritativa: "53" não está na lista, então não
	// pode vencer mesmo sendo permutação de uma combinação presente.
	combos := []Combination{{Number: "35", StakePaise: 1000}}
	out, err := Evaluate(crossingBet(combos), declared("53"))
	require.NoError(t, err)
	assert.False(t, out.Won)
	require.Len(t, out.Combos, 1)
}

func TestEvaluateRejectsInvalidWinningNumber(t *testing.T) {
	for _, bad := range []string{"", "5", "456", "4a", "ab", " 45"} {
		_, err := Evaluate(jodiBet("45"), declared(bad))
		assert.ErrorIs(t, err, ErrInvalidWinningNumber, "winning %q", bad)
	}
}

func TestEvaluateRejectsMalformedSelections(t *testing.T) {
	tests := []struct {
		name string
		bet  Bet
	}{
		{"jodi empty", jodiBet("")},
		{"jodi three digits", jodiBet("123")},
		{"haruf missing digit", harufBet("", PositionFirst)},
		{"haruf multi digit", harufBet("45", PositionFirst)},
		{"haruf bad position", harufBet("4", Position("middle"))},
		{"haruf legacy alias not translated", harufBet("4", Position("andhar"))},
		{"crossing empty", crossingBet(nil)},
		{"crossing bad combo", crossingBet([]Combination{{Number: "3", StakePaise: 100}})},
		{"crossing zero stake", crossingBet([]Combination{{Number: "35", StakePaise: 0}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.bet, declared("45"))
			assert.ErrorIs(t, err, ErrMalformedSelection)
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	bet := crossingBet([]Combination{
		{Number: "35", StakePaise: 1000},
		{Number: "53", StakePaise: 1000},
	})
	first, err := Evaluate(bet, declared("35"))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Evaluate(bet, declared("35"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"first", PositionFirst, false},
		{"last", PositionLast, false},
		{"andhar", PositionFirst, false},
		{"bahar", PositionLast, false},
		{"ANDHAR", PositionFirst, false},
		{" Bahar ", PositionLast, false},
		{"middle", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrMalformedSelection, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
