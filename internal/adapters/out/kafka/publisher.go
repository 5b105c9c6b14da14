// Package kafka relays outbox messages to Kafka topics.
package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.EventPublisher. Messages with the same key land
// on the same partition, so events of one order stay in order.
type Publisher struct {
	writer messageWriter
	log    zerolog.Logger
}

// Config holds the broker connection settings.
type Config struct {
	Brokers      []string
	WriteTimeout time.Duration
}

// NewPublisher builds a publisher over a kafka-go writer. Topics are chosen
// per message.
func NewPublisher(cfg Config, log zerolog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer, log), nil
}

func newPublisher(writer messageWriter, log zerolog.Logger) *Publisher {
	return &Publisher{writer: writer, log: log.With().Str("component", "kafka_publisher").Logger()}
}

func (p *Publisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return err
	}
	p.log.Debug().Str("topic", topic).Str("key", key).Msg("message published")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
