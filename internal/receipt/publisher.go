package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	Topic         = "shop-receipts"
	EventType     = "bill.created"
	eventTypeHead = "event_type"
)

// Publisher announces a finished checkout
type Publisher interface {
	Publish(ctx context.Context, bill domain.Bill) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(logger *slog.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, bill domain.Bill) error {
	payload, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to marshal bill %s: %w", bill.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(bill.ID), // one partition per bill keeps its events ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHead, Value: []byte(EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish bill %s: %w", bill.ID, err)
	}

	p.logger.Debug("receipt published", "bill_id", bill.ID, "lines", len(bill.Lines))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops receipts, used when no brokers are configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.Bill) error { return nil }
func (NopPublisher) Close() error                               { return nil }

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)
