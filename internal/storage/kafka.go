package storage

import (
	"context"
	"encoding/json"
	"strconv"

	"couple-kitchen/internal/domain"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.Event) error {
	payload, _ := json.Marshal(ev)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(ev.OrderID)),
		Value: payload,
	})
}
