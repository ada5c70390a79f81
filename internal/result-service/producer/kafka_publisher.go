package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// KafkaPublisher publica eventos result_declared consumidos pelo settlement-worker.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishResultDeclared(ctx context.Context, e events.ResultDeclared) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	// Key por drawId: mesma partição, ordem preservada por draw.
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.DrawID), Value: b})
}
