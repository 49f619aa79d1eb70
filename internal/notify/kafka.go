// Package notify publishes background job completions to external systems.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/worker"
)

// ErrNoBrokers is returned when Kafka is configured without brokers.
var ErrNoBrokers = errors.New("kafka: no brokers configured")

// Event is the message value written for each completion. The transformed
// text itself is not included; consumers fetch it from the jobs API.
type Event struct {
	ID               string `json:"id"`
	Key              string `json:"key"`
	Status           string `json:"status"`
	TextLength       int    `json:"textLength"`
	ResultLength     int    `json:"resultLength,omitempty"`
	Tier             string `json:"tier,omitempty"`
	Warnings         int    `json:"warnings,omitempty"`
	Error            string `json:"error,omitempty"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// EventFor builds the message value for c.
func EventFor(c worker.Completion) Event {
	ev := Event{
		ID:               c.ID,
		Key:              c.Key,
		Status:           string(c.Status),
		TextLength:       c.TextLength,
		Error:            c.Error,
		ProcessingTimeMs: c.ProcessingTime.Milliseconds(),
	}
	if c.Result != nil && c.Status == worker.StatusDone {
		ev.ResultLength = len(c.Result.Text)
		ev.Tier = string(c.Result.Tier)
		ev.Warnings = len(c.Result.Warnings)
	}
	return ev
}

// Kafka sends completions to a topic, keyed by job id.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafka connects a synchronous producer to the configured brokers.
func NewKafka(cfg config.KafkaConfig, logger *slog.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka: connect producer: %w", err)
	}
	return NewKafkaWithProducer(p, cfg.Topic, logger)
}

// NewKafkaWithProducer wraps an existing producer.
func NewKafkaWithProducer(p sarama.SyncProducer, topic string, logger *slog.Logger) (*Kafka, error) {
	if p == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Kafka{producer: p, topic: topic, logger: logger}, nil
}

// Notify publishes c. It implements worker.Notifier.
func (k *Kafka) Notify(ctx context.Context, c worker.Completion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(EventFor(c))
	if err != nil {
		return fmt.Errorf("kafka: encode completion: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(c.ID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: publish %s: %w", c.ID, err)
	}

	k.logger.Debug("completion published",
		"id", c.ID,
		"topic", k.topic,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
