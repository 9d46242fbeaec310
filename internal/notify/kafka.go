package notify

import (
	"context"

	kafkax "github.com/MUR0612/smart-inventory/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher mirrors events onto Kafka topics of the same name, keyed by
// product id so one product's events stay ordered within a partition.
type KafkaPublisher struct {
	Producer *kafkax.Producer
}

func (p *KafkaPublisher) Publish(_ context.Context, topic, key string, payload []byte) error {
	return p.Producer.Publish(topic, []byte(key), payload,
		kafkago.Header{Key: "x-event-type", Value: []byte(topic)},
	)
}

// KafkaSubscriber consumes the mirrored topics through a consumer group.
type KafkaSubscriber struct {
	Consumer *kafkax.Consumer
}

func (s *KafkaSubscriber) Run(ctx context.Context, h HandlerFunc) error {
	return s.Consumer.Start(ctx, func(ctx context.Context, m kafkago.Message) error {
		return h(ctx, m.Topic, m.Value)
	})
}
