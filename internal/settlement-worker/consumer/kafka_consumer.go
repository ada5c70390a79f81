package consumer

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
	skafka "github.com/Anilsharma012/meraMatka-sub000/internal/shared/kafka"
	ev "github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// Worker consome eventos result_declared do Kafka e aciona o Processor.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Worker struct {
	Log       *zap.Logger
	Reader    *kafkago.Reader
	Processor *settlement.Processor

	SettledWriter *kafkago.Writer // publica draw_settled
	DLQWriter     *kafkago.Writer // opcional: eventos que não processam

	OnConsumed func()       // métricas (counter++)
	OnSettled  func()       // métricas
	OnSkipped  func()       // métricas: no-op idempotente
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação.
func (w *Worker) Run(ctx context.Context) error {
	for {
		m, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if w.OnConsumed != nil {
			w.OnConsumed()
		}

		var declared ev.ResultDeclared
		if err := json.Unmarshal(m.Value, &declared); err != nil {
			w.Log.Error("invalid result_declared message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			w.toDLQ(ctx, m.Key, m.Value)
			continue
		}

		if err := w.processOne(ctx, declared); err != nil {
			w.Log.Error("settle draw failed",
				zap.String("draw_id", declared.DrawID),
				zap.Error(err),
			)
			if w.OnError != nil {
				w.OnError("settle")
			}
			w.toDLQ(ctx, []byte(declared.DrawID), m.Value)
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne executa a liquidação de um draw:
// 1. Converte o evento para o DeclaredResult do core
// 2. Roda o Processor (idempotente por draw)
// 3. Publica draw_settled quando houve liquidação efetiva
func (w *Worker) processOne(ctx context.Context, declared ev.ResultDeclared) error {
	result := settlement.DeclaredResult{
		DrawID:        declared.DrawID,
		Market:        declared.Market,
		WinningNumber: declared.WinningNumber,
		Method:        declared.Method,
		DeclaredBy:    declared.DeclaredBy,
		DeclaredAt:    declared.DeclaredAt,
	}

	sum, err := w.Processor.Settle(ctx, result)
	if err != nil {
		return err
	}

	if sum.Duplicate {
		// Re-entrega ou re-declaração: no-op, sem evento novo.
		if w.OnSkipped != nil {
			w.OnSkipped()
		}
		return nil
	}

	if w.OnSettled != nil {
		w.OnSettled()
	}

	settled := ev.DrawSettled{
		DrawID:           sum.DrawID,
		WinningNumber:    sum.WinningNumber,
		BetsTotal:        sum.BetsTotal,
		BetsWon:          sum.BetsWon,
		TotalPayoutPaise: sum.TotalPayoutPaise,
		SettledAt:        sum.SettledAt,
	}
	if w.SettledWriter == nil {
		return nil
	}
	b, _ := json.Marshal(settled)
	if err := skafka.WriteJSON(ctx, w.SettledWriter, sum.DrawID, b); err != nil {
		// A liquidação em si está completa e marcada; só o evento falhou.
		w.Log.Warn("publish draw_settled", zap.String("draw_id", sum.DrawID), zap.Error(err))
	}
	return nil
}

func (w *Worker) toDLQ(ctx context.Context, key, value []byte) {
	if w.DLQWriter == nil {
		return
	}
	if err := skafka.WriteJSON(ctx, w.DLQWriter, string(key), value); err != nil {
		w.Log.Error("write to dlq failed", zap.Error(err))
	}
}
