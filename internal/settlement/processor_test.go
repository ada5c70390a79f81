package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ev "github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// --- fakes em memória no contrato do Processor ---

type fakeStore struct {
	mu        sync.Mutex
	bets      map[string][]Bet // drawID -> pending bets
	finalized map[string]SettlementResult
	settled   map[string]Summary

	failFinalize map[string]error // betID -> erro forçado
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bets:         make(map[string][]Bet),
		finalized:    make(map[string]SettlementResult),
		settled:      make(map[string]Summary),
		failFinalize: make(map[string]error),
	}
}

func (s *fakeStore) ListPending(_ context.Context, drawID string) ([]Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Bet
	for _, b := range s.bets[drawID] {
		if _, done := s.finalized[b.ID]; !done {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) Finalize(_ context.Context, res SettlementResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFinalize[res.BetID]; ok {
		return err
	}
	s.finalized[res.BetID] = res
	return nil
}

func (s *fakeStore) IsSettled(_ context.Context, drawID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.settled[drawID]
	return ok, nil
}

func (s *fakeStore) MarkSettled(_ context.Context, sum Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settled[sum.DrawID] = sum
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	credits map[string]CreditInstruction // reference -> instruction (idempotente)
	applied []CreditInstruction          // toda aplicação, inclusive repetida
	failRef map[string]int               // reference -> falhas restantes
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{credits: make(map[string]CreditInstruction), failRef: make(map[string]int)}
}

func (l *fakeLedger) Credit(_ context.Context, ins CreditInstruction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := l.failRef[ins.Reference]; n > 0 {
		l.failRef[ins.Reference] = n - 1
		return errors.New("ledger unavailable")
	}
	if _, ok := l.credits[ins.Reference]; !ok {
		l.credits[ins.Reference] = ins
		l.applied = append(l.applied, ins)
	}
	return nil
}

type fakeLock struct {
	mu   sync.Mutex
	held map[string]bool
	busy bool
}

func (f *fakeLock) Acquire(_ context.Context, drawID string) (func(), bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return nil, false, nil
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[drawID] {
		return nil, false, nil
	}
	f.held[drawID] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, drawID)
	}, true, nil
}

type fakeConfig struct{ cfg PayoutConfig }

func (f fakeConfig) PayoutConfig(_ context.Context, _ string) (PayoutConfig, error) {
	return f.cfg, nil
}

type fakeSink struct {
	mu        sync.Mutex
	anomalies []ev.SettlementAnomaly
}

func (f *fakeSink) Report(_ context.Context, a ev.SettlementAnomaly) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anomalies = append(f.anomalies, a)
}

func newProcessor(store *fakeStore, ledger *fakeLedger, sink *fakeSink) *Processor {
	return &Processor{
		Log:           zap.NewNop(),
		Store:         store,
		Ledger:        ledger,
		Config:        fakeConfig{cfg: galiConfig()},
		Lock:          &fakeLock{},
		Sink:          sink,
		CreditRetries: 3,
		CreditBackoff: time.Millisecond,
	}
}

// --- testes ---

func TestSettleMixedBatch(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	sink := &fakeSink{}

	winner := jodiBet("45")
	winner.ID = "bet-1"
	loser := jodiBet("46")
	loser.ID = "bet-2"
	haruf := harufBet("4", PositionFirst)
	haruf.ID = "bet-3"
	crossing := crossingBet([]Combination{
		{Number: "45", StakePaise: 1000},
		{Number: "54", StakePaise: 1000},
	})
	crossing.ID = "bet-4"
	store.bets["draw-1"] = []Bet{winner, loser, haruf, crossing}

	p := newProcessor(store, ledger, sink)
	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)

	assert.Equal(t, 4, sum.BetsTotal)
	assert.Equal(t, 3, sum.BetsWon)
	assert.Equal(t, 1, sum.BetsLost)
	assert.False(t, sum.Duplicate)

	// 95000 (jodi) + 9000 (haruf) + 95000 (crossing "45")
	assert.Equal(t, int64(199000), sum.TotalPayoutPaise)

	assert.Equal(t, StatusWon, store.finalized["bet-1"].Outcome)
	assert.Equal(t, StatusLost, store.finalized["bet-2"].Outcome)
	assert.Equal(t, StatusWon, store.finalized["bet-3"].Outcome)
	assert.Equal(t, StatusWon, store.finalized["bet-4"].Outcome)

	// Um crédito por aposta vencedora, categoria winning, referência = betID.
	require.Len(t, ledger.applied, 3)
	for _, ins := range ledger.applied {
		assert.Equal(t, "winning", ins.Category)
		assert.Equal(t, ins.Reference, store.finalized[ins.Reference].BetID)
	}

	_, marked := store.settled["draw-1"]
	assert.True(t, marked)
	assert.Empty(t, sink.anomalies)
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	sink := &fakeSink{}

	bet := jodiBet("45")
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}

	p := newProcessor(store, ledger, sink)
	first, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	statusAfterFirst := store.finalized["bet-1"].Outcome
	creditsAfterFirst := len(ledger.applied)

	// Segunda execução do mesmo resultado: no-op, sem créditos duplicados.
	second, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, statusAfterFirst, store.finalized["bet-1"].Outcome)
	assert.Equal(t, creditsAfterFirst, len(ledger.applied))
}

func TestSettleEmptyDrawIsNoOpButMarked(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	p := newProcessor(store, ledger, &fakeSink{})

	sum, err := p.Settle(context.Background(), declared("07"))
	require.NoError(t, err)

	assert.Zero(t, sum.BetsTotal)
	assert.Empty(t, ledger.applied)
	_, marked := store.settled["draw-1"]
	assert.True(t, marked, "draw sem apostas ainda ganha marcador")
}

func TestSettleRejectsInvalidWinningNumberBeforeTouchingBets(t *testing.T) {
	store := newFakeStore()
	bet := jodiBet("45")
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}

	p := newProcessor(store, newFakeLedger(), &fakeSink{})
	_, err := p.Settle(context.Background(), declared("4"))
	assert.ErrorIs(t, err, ErrInvalidWinningNumber)

	assert.Empty(t, store.finalized)
	assert.Empty(t, store.settled)
}

func TestSettleMalformedBetBecomesLostWithoutAbortingBatch(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	sink := &fakeSink{}

	corrupt := Bet{
		ID: "bet-corrupt", UserID: "user-9", DrawID: "draw-1", Market: "gali",
		Type: BetHaruf, StakePaise: 1000,
		Selection: Selection{Digit: "", Position: "middle"},
		Status:    StatusPending,
	}
	good := jodiBet("45")
	good.ID = "bet-good"
	store.bets["draw-1"] = []Bet{corrupt, good}

	p := newProcessor(store, ledger, sink)
	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)

	assert.Equal(t, StatusLost, store.finalized["bet-corrupt"].Outcome)
	assert.Equal(t, StatusWon, store.finalized["bet-good"].Outcome)
	assert.Equal(t, 1, sum.Anomalies)

	require.Len(t, sink.anomalies, 1)
	assert.Equal(t, ev.AnomalyMalformedSelection, sink.anomalies[0].Kind)
	assert.Equal(t, "bet-corrupt", sink.anomalies[0].BetID)
}

func TestSettleCreditRetryThenSuccess(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	sink := &fakeSink{}

	bet := jodiBet("45")
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}
	ledger.failRef["bet-1"] = 2 // duas falhas, terceira tentativa passa

	p := newProcessor(store, ledger, sink)
	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)

	assert.Equal(t, int64(95000), sum.TotalPayoutPaise)
	assert.False(t, store.finalized["bet-1"].PayoutPending)
	assert.Empty(t, sink.anomalies)
}

func TestSettleCreditExhaustionFlagsPayoutPending(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	sink := &fakeSink{}

	bet := jodiBet("45")
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}
	ledger.failRef["bet-1"] = 100 // nunca aplica

	p := newProcessor(store, ledger, sink)
	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)

	// A aposta continua WON; o valor fica sinalizado para reconciliação.
	res := store.finalized["bet-1"]
	assert.Equal(t, StatusWon, res.Outcome)
	assert.True(t, res.PayoutPending)
	assert.Zero(t, sum.TotalPayoutPaise, "payout não aplicado não entra no total pago")

	require.Len(t, sink.anomalies, 1)
	assert.Equal(t, ev.AnomalyPayoutPending, sink.anomalies[0].Kind)
	assert.Equal(t, int64(95000), sink.anomalies[0].AmountPaise)
}

func TestSettleLockBusyIsDuplicateNoOp(t *testing.T) {
	store := newFakeStore()
	bet := jodiBet("45")
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}

	p := newProcessor(store, newFakeLedger(), &fakeSink{})
	p.Lock = &fakeLock{busy: true}

	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)
	assert.True(t, sum.Duplicate)
	assert.Empty(t, store.finalized)
}

func TestSettleFinalizeFailureLeavesDrawUnmarked(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()

	b1 := jodiBet("45")
	b1.ID = "bet-1"
	b2 := jodiBet("46")
	b2.ID = "bet-2"
	store.bets["draw-1"] = []Bet{b1, b2}
	store.failFinalize["bet-2"] = errors.New("db down")

	p := newProcessor(store, ledger, &fakeSink{})
	_, err := p.Settle(context.Background(), declared("45"))
	require.Error(t, err)

	// Sem marcador: a re-execução retoma o que ficou pendente.
	assert.Empty(t, store.settled)

	// Re-execução após o banco voltar: só a aposta pendente é retomada e o
	// crédito idempotente não duplica.
	delete(store.failFinalize, "bet-2")
	sum, err := p.Settle(context.Background(), declared("45"))
	require.NoError(t, err)
	assert.False(t, sum.Duplicate)
	assert.Equal(t, StatusLost, store.finalized["bet-2"].Outcome)
	assert.Len(t, ledger.applied, 1)
}

func TestSettleMissingRatioAbortsBeforeFinalizing(t *testing.T) {
	store := newFakeStore()
	bet := harufBet("4", PositionFirst)
	bet.ID = "bet-1"
	store.bets["draw-1"] = []Bet{bet}

	p := newProcessor(store, newFakeLedger(), &fakeSink{})
	p.Config = fakeConfig{cfg: PayoutConfig{Market: "gali", Ratios: map[BetType]int64{BetJodi: 95}}}

	_, err := p.Settle(context.Background(), declared("45"))
	require.Error(t, err)
	assert.Empty(t, store.finalized)
	assert.Empty(t, store.settled)
}

func TestSettleConcurrentDistinctDraws(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()

	for _, drawID := range []string{"draw-a", "draw-b", "draw-c"} {
		b := jodiBet("45")
		b.ID = "bet-" + drawID
		b.DrawID = drawID
		store.bets[drawID] = []Bet{b}
	}

	p := newProcessor(store, ledger, &fakeSink{})

	var wg sync.WaitGroup
	for _, drawID := range []string{"draw-a", "draw-b", "draw-c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res := declared("45")
			res.DrawID = id
			_, err := p.Settle(context.Background(), res)
			assert.NoError(t, err)
		}(drawID)
	}
	wg.Wait()

	assert.Len(t, store.settled, 3)
	assert.Len(t, ledger.applied, 3)
}
