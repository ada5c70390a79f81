package sink

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	ev "github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// KafkaSink implementa settlement.AnomalySink publicando no tópico
// settlement_anomalies, consumido pelos sistemas administrativos.
// Falha de publicação vira log, nunca erro de volta ao batch.
type KafkaSink struct {
	Log    *zap.Logger
	Writer *kafkago.Writer
}

func New(log *zap.Logger, w *kafkago.Writer) *KafkaSink {
	return &KafkaSink{Log: log, Writer: w}
}

func (s *KafkaSink) Report(ctx context.Context, a ev.SettlementAnomaly) {
	b, _ := json.Marshal(a)
	if err := s.Writer.WriteMessages(ctx, kafkago.Message{Key: []byte(a.DrawID), Value: b}); err != nil {
		s.Log.Error("publish settlement anomaly",
			zap.String("draw_id", a.DrawID),
			zap.String("bet_id", a.BetID),
			zap.Error(err),
		)
	}
}
