// Package events publishes and consumes company and contact change events
// over Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

const (
	queueSize       = 1000
	topicPartitions = 3
	// topicSetupTimeout bounds the retries creating the topic at startup.
	topicSetupTimeout = 10 * time.Second
)

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// NewProducer ensures the topic exists and starts the delivery loop.
func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	if err := ensureTopic(brokers, topic, logger); err != nil {
		return nil, err
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}
	return newProducer(writer, logger, queueSize), nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger, size int) *Producer {
	p := &Producer{
		writer:    writer,
		events:    make(chan Event, size),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

func ensureTopic(brokers []string, topic string, logger *zap.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = topicSetupTimeout

	var conn *kafka.Conn
	err := backoff.Retry(func() error {
		var err error
		conn, err = kafka.Dial("tcp", brokers[0])
		return err
	}, bo)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     topicPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	return nil
}

// Produce queues the event for delivery. It never blocks: when the queue is
// full the event is dropped.
func (p *Producer) Produce(event Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			p.drain()
			return
		}
	}
}

// drain flushes whatever is still queued when the producer closes.
func (p *Producer) drain() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("entity_id", event.EntityID.String()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID.String()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// NopProducer discards events. It stands in for Producer when no brokers
// are configured.
type NopProducer struct {
	logger *zap.Logger
}

func NewNopProducer(logger *zap.Logger) *NopProducer {
	return &NopProducer{logger: logger.Named("nop_producer")}
}

func (p *NopProducer) Produce(event Event) {
	p.logger.Debug("event discarded",
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID.String()),
	)
}

func (p *NopProducer) Close() {}
