package autoresult

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	ev "github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// Publisher publica eventos result_declared para o settlement-worker.
type Publisher interface {
	PublishResultDeclared(ctx context.Context, e ev.ResultDeclared) error
}

// Generator varre draws vencidos e declara um número aleatório para cada um.
// Usado pelos mercados sem operador manual; a declaração manual, quando
// chega primeiro, sempre vence a corrida (índice único em declared_results).
type Generator struct {
	Log      *zap.Logger
	Repo     *Repo
	Publ     Publisher
	Interval time.Duration
	Rand     *rand.Rand

	OnDeclared func() // métricas (counter++)
	OnError    func() // métricas
}

// Run executa o loop de varredura até o contexto encerrar.
func (g *Generator) Run(ctx context.Context) error {
	interval := g.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

// tick processa um lote de draws vencidos.
func (g *Generator) tick(ctx context.Context) {
	due, err := g.Repo.ListDue(ctx, time.Now().UTC())
	if err != nil {
		g.Log.Warn("list due draws", zap.Error(err))
		if g.OnError != nil {
			g.OnError()
		}
		return
	}

	for _, d := range due {
		number := fmt.Sprintf("%02d", g.Rand.Intn(100))
		declaredAt := time.Now().UTC()

		if err := g.Repo.Declare(ctx, d.DrawID, d.Market, number, declaredAt); err != nil {
			if errors.Is(err, ErrAlreadyDeclared) {
				continue // declaração manual chegou primeiro
			}
			g.Log.Error("declare automatic result", zap.String("draw_id", d.DrawID), zap.Error(err))
			if g.OnError != nil {
				g.OnError()
			}
			continue
		}

		if err := g.Publ.PublishResultDeclared(ctx, ev.ResultDeclared{
			DrawID:        d.DrawID,
			Market:        d.Market,
			WinningNumber: number,
			Method:        "automatic",
			DeclaredBy:    "auto-result-worker",
			DeclaredAt:    declaredAt,
		}); err != nil {
			// Resultado persistido; a liquidação pode ser disparada de novo.
			g.Log.Error("publish result_declared", zap.String("draw_id", d.DrawID), zap.Error(err))
			if g.OnError != nil {
				g.OnError()
			}
			continue
		}

		if g.OnDeclared != nil {
			g.OnDeclared()
		}
		g.Log.Info("automatic result declared",
			zap.String("draw_id", d.DrawID),
			zap.String("market", d.Market),
			zap.String("winning_number", number),
		)
	}
}
