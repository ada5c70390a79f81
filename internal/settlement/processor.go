package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	ev "github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// Store é a visão do Processor sobre a persistência de apostas e o marcador
// de liquidação por draw.
type Store interface {
	// ListPending retorna as apostas PENDING do draw.
	ListPending(ctx context.Context, drawID string) ([]Bet, error)
	// Finalize grava o estado terminal e o payout de uma aposta.
	Finalize(ctx context.Context, res SettlementResult) error
	// IsSettled informa se o draw já possui marcador de liquidação.
	IsSettled(ctx context.Context, drawID string) (bool, error)
	// MarkSettled grava o marcador de liquidação do draw (guarda de idempotência).
	MarkSettled(ctx context.Context, sum Summary) error
}

// Ledger aplica instruções de crédito na carteira. A aplicação precisa ser
// idempotente por Reference (betID): re-execuções não podem pagar duas vezes.
type Ledger interface {
	Credit(ctx context.Context, ins CreditInstruction) error
}

// ConfigSource fornece o PayoutConfig do mercado.
type ConfigSource interface {
	PayoutConfig(ctx context.Context, market string) (PayoutConfig, error)
}

// Locker serializa tentativas de liquidação do mesmo draw.
// Draws distintos liquidam em paralelo sem estado compartilhado.
type Locker interface {
	// Acquire tenta obter o lock do draw. ok=false significa que outra
	// tentativa está em andamento. release deve ser chamado ao final.
	Acquire(ctx context.Context, drawID string) (release func(), ok bool, err error)
}

// AnomalySink recebe anomalias por aposta (seleção corrompida, crédito não
// aplicado). Nunca propaga erro de volta ao batch.
type AnomalySink interface {
	Report(ctx context.Context, a ev.SettlementAnomaly)
}

// Summary resume uma execução de liquidação de um draw.
type Summary struct {
	DrawID           string
	WinningNumber    string
	BetsTotal        int
	BetsWon          int
	BetsLost         int
	Anomalies        int
	TotalPayoutPaise int64
	SettledAt        time.Time
	Duplicate        bool // true quando o draw já estava liquidado (no-op)
}

// Processor orquestra a liquidação: busca apostas pendentes, avalia, calcula
// payout, credita vencedores e grava estados terminais, exatamente uma vez
// por draw. Callbacks de métricas podem ser usados para monitorar cada etapa.
type Processor struct {
	Log    *zap.Logger
	Store  Store
	Ledger Ledger
	Config ConfigSource
	Lock   Locker
	Sink   AnomalySink

	// Retry de crédito na carteira
	CreditRetries int           // default 3
	CreditBackoff time.Duration // default 300ms, linear

	OnEvaluated func(outcome string) // métricas (counter++ por desfecho)
	OnCredited  func()               // métricas
	OnAnomaly   func(kind string)    // métricas por tipo de anomalia
}

// Settle processa todas as apostas PENDING do draw do resultado declarado.
//
// Garantias:
//   - número vencedor inválido é rejeitado antes de tocar qualquer aposta;
//   - draw já liquidado é no-op (Duplicate=true), nunca erro;
//   - uma aposta corrompida vira LOST + anomalia, sem abortar o batch;
//   - crédito esgotando retries deixa a aposta WON com payout pendente e
//     reporta anomalia para reconciliação manual; dinheiro nunca some;
//   - o marcador só é gravado após todas as apostas finalizadas, então uma
//     re-execução pós-crash é segura (créditos são idempotentes por betID).
func (p *Processor) Settle(ctx context.Context, result DeclaredResult) (Summary, error) {
	if !IsTwoDigits(result.WinningNumber) {
		return Summary{}, fmt.Errorf("draw %s: %w: %q", result.DrawID, ErrInvalidWinningNumber, result.WinningNumber)
	}

	sum := Summary{DrawID: result.DrawID, WinningNumber: result.WinningNumber}

	settled, err := p.Store.IsSettled(ctx, result.DrawID)
	if err != nil {
		return Summary{}, fmt.Errorf("check settlement marker: %w", err)
	}
	if settled {
		p.Log.Info("draw already settled, skipping", zap.String("draw_id", result.DrawID))
		sum.Duplicate = true
		return sum, nil
	}

	release, ok, err := p.Lock.Acquire(ctx, result.DrawID)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire settlement lock: %w", err)
	}
	if !ok {
		p.Log.Info("settlement already in progress", zap.String("draw_id", result.DrawID))
		sum.Duplicate = true
		return sum, nil
	}
	defer release()

	// Re-checa sob o lock: outra réplica pode ter terminado entre a primeira
	// checagem e a aquisição.
	if settled, err = p.Store.IsSettled(ctx, result.DrawID); err != nil {
		return Summary{}, fmt.Errorf("recheck settlement marker: %w", err)
	}
	if settled {
		sum.Duplicate = true
		return sum, nil
	}

	cfg, err := p.Config.PayoutConfig(ctx, result.Market)
	if err != nil {
		return Summary{}, fmt.Errorf("load payout config for market %q: %w", result.Market, err)
	}

	bets, err := p.Store.ListPending(ctx, result.DrawID)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending bets: %w", err)
	}
	sum.BetsTotal = len(bets)

	// Ratios faltando abortam antes de finalizar qualquer aposta: erro de
	// configuração é do mercado inteiro, não de uma aposta.
	for _, b := range bets {
		if _, ok := cfg.Ratio(b.Type); !ok {
			return Summary{}, fmt.Errorf("market %q has no payout ratio for bet type %q", result.Market, b.Type)
		}
	}

	var finalizeErrs int
	for _, bet := range bets {
		res := p.settleOne(ctx, bet, result, cfg, &sum)
		if err := p.Store.Finalize(ctx, res); err != nil {
			finalizeErrs++
			p.Log.Error("finalize bet failed",
				zap.String("bet_id", bet.ID),
				zap.String("draw_id", result.DrawID),
				zap.Error(err),
			)
		}
	}

	if finalizeErrs > 0 {
		// Sem marcador: a re-execução retoma as apostas que ficaram PENDING.
		return Summary{}, fmt.Errorf("draw %s: %d bets failed to finalize", result.DrawID, finalizeErrs)
	}

	sum.SettledAt = time.Now().UTC()
	if err := p.Store.MarkSettled(ctx, sum); err != nil {
		return Summary{}, fmt.Errorf("mark draw settled: %w", err)
	}

	p.Log.Info("draw settled",
		zap.String("draw_id", result.DrawID),
		zap.String("winning_number", result.WinningNumber),
		zap.Int("bets_total", sum.BetsTotal),
		zap.Int("bets_won", sum.BetsWon),
		zap.Int64("total_payout_paise", sum.TotalPayoutPaise),
	)
	return sum, nil
}

// settleOne avalia e credita uma única aposta, isolando falhas locais.
func (p *Processor) settleOne(ctx context.Context, bet Bet, result DeclaredResult, cfg PayoutConfig, sum *Summary) SettlementResult {
	res, err := Grade(bet, result, cfg)
	if err != nil {
		// Registro corrompido não bloqueia a liquidação dos demais apostadores.
		sum.BetsLost++
		sum.Anomalies++
		p.reportAnomaly(ctx, ev.SettlementAnomaly{
			DrawID: result.DrawID,
			BetID:  bet.ID,
			UserID: bet.UserID,
			Kind:   ev.AnomalyMalformedSelection,
			Detail: err.Error(),
			Ts:     time.Now().UTC(),
		})
		return SettlementResult{
			BetID:     bet.ID,
			Outcome:   StatusLost,
			AppliedAt: time.Now().UTC(),
		}
	}

	if p.OnEvaluated != nil {
		p.OnEvaluated(string(res.Outcome))
	}

	if res.Outcome == StatusLost {
		sum.BetsLost++
		return res
	}

	sum.BetsWon++
	if err := p.creditWithRetry(ctx, CreditInstruction{
		UserID:      bet.UserID,
		AmountPaise: res.PayoutPaise,
		Category:    "winning",
		Reference:   bet.ID,
	}); err != nil {
		// A aposta segue WON; o pagamento fica pendente para reconciliação.
		res.PayoutPending = true
		sum.Anomalies++
		p.reportAnomaly(ctx, ev.SettlementAnomaly{
			DrawID:      result.DrawID,
			BetID:       bet.ID,
			UserID:      bet.UserID,
			Kind:        ev.AnomalyPayoutPending,
			Detail:      err.Error(),
			AmountPaise: res.PayoutPaise,
			Ts:          time.Now().UTC(),
		})
		return res
	}

	if p.OnCredited != nil {
		p.OnCredited()
	}
	sum.TotalPayoutPaise += res.PayoutPaise
	return res
}

// creditWithRetry aplica o crédito com backoff linear simples.
func (p *Processor) creditWithRetry(ctx context.Context, ins CreditInstruction) error {
	retries := p.CreditRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := p.CreditBackoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}

	var err error
	for i := 0; i < retries; i++ {
		if err = p.Ledger.Credit(ctx, ins); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * backoff):
		}
	}
	return err
}

func (p *Processor) reportAnomaly(ctx context.Context, a ev.SettlementAnomaly) {
	if p.OnAnomaly != nil {
		p.OnAnomaly(a.Kind)
	}
	p.Log.Warn("settlement anomaly",
		zap.String("draw_id", a.DrawID),
		zap.String("bet_id", a.BetID),
		zap.String("kind", a.Kind),
		zap.String("detail", a.Detail),
	)
	if p.Sink != nil {
		p.Sink.Report(ctx, a)
	}
}
