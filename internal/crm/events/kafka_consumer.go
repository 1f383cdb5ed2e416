package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads events from the topic as part of a consumer group.
// Messages are committed only after the handler succeeds.
type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler func(context.Context, Event) error
	done    chan struct{}
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), logger)
}

func newConsumer(reader KafkaReader, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		logger: logger.Named("kafka_consumer"),
		done:   make(chan struct{}),
	}
}

// Start consumes in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				continue
			}

			var event Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("Failed to parse event",
					zap.Error(err),
					zap.ByteString("value", msg.Value),
				)
				continue
			}

			if c.handler != nil {
				if err := c.handler(ctx, event); err != nil {
					c.logger.Error("Failed to handle event",
						zap.Error(err),
						zap.String("event_type", string(event.Type)),
					)
					continue
				}
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("Failed to commit message",
					zap.Error(err),
					zap.String("event_type", string(event.Type)),
				)
			}
		}
	}()
}

// Done is closed once the consume loop started by Start has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) RegisterHandler(fn func(context.Context, Event) error) {
	c.handler = fn
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
