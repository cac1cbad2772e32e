package repository

import (
	"context"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	pkgkafka "QuantPulse/pkg/kafka"
)

// KafkaSignalPublisher pushes actionable screen results onto a Kafka
// topic, keyed by symbol so one symbol's signals stay ordered within a
// partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, res *models.ScreenResult) error {
	payload := map[string]interface{}{
		"symbol":    res.Symbol,
		"timeframe": res.Timeframe,
		"ts":        res.Timestamp.Unix(),
	}
	if res.Confluence != nil {
		payload["label"] = string(res.Confluence.Label)
		payload["score"] = res.Confluence.Score
		payload["regime"] = string(res.Confluence.Regime)
	}
	if res.Signal != nil && res.Signal.Sized() {
		payload["side"] = string(res.Signal.Side)
		payload["entry"] = *res.Signal.Entry
		payload["sl"] = *res.Signal.SL
		payload["tp1"] = *res.Signal.TP1
		payload["tp2"] = *res.Signal.TP2
		payload["qty"] = *res.Signal.Qty
	}
	if res.Execution != nil {
		payload["executable"] = res.Execution.OK
	}
	return p.producer.Publish(ctx, p.topic, []byte(res.Symbol), payload)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
