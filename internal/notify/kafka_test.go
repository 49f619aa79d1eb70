package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	t.Helper()
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestKafka_Notify(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "recase.completions" {
			return fmt.Errorf("topic = %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "job-1" {
			return fmt.Errorf("key = %q, want job-1", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.Status != "done" || ev.ResultLength != 5 || ev.ProcessingTimeMs != 1500 {
			return fmt.Errorf("unexpected event %+v", ev)
		}
		return nil
	})

	k, err := NewKafkaWithProducer(producer, "recase.completions", testLogger())
	if err != nil {
		t.Fatalf("NewKafkaWithProducer() error = %v", err)
	}

	err = k.Notify(context.Background(), worker.Completion{
		ID:             "job-1",
		Key:            "upper-case",
		Status:         worker.StatusDone,
		TextLength:     5,
		Result:         &pipeline.Result{Text: "HELLO", Tier: pipeline.TierLarge},
		ProcessingTime: 1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestKafka_NotifyFailure(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k, err := NewKafkaWithProducer(producer, "recase.completions", testLogger())
	if err != nil {
		t.Fatalf("NewKafkaWithProducer() error = %v", err)
	}
	defer k.Close()

	err = k.Notify(context.Background(), worker.Completion{ID: "job-2", Status: worker.StatusFailed})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("Notify() error = %v, want ErrOutOfBrokers", err)
	}
}

func TestKafka_NotifyCancelled(t *testing.T) {
	producer := newMockProducer(t)
	k, err := NewKafkaWithProducer(producer, "t", testLogger())
	if err != nil {
		t.Fatalf("NewKafkaWithProducer() error = %v", err)
	}
	defer k.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := k.Notify(ctx, worker.Completion{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Notify() error = %v, want context.Canceled", err)
	}
}

func TestNewKafkaWithProducer_Validation(t *testing.T) {
	producer := newMockProducer(t)
	defer producer.Close()

	if _, err := NewKafkaWithProducer(nil, "t", testLogger()); err == nil {
		t.Error("nil producer: error = nil, want error")
	}
	if _, err := NewKafkaWithProducer(producer, "", testLogger()); err == nil {
		t.Error("empty topic: error = nil, want error")
	}
	if _, err := NewKafkaWithProducer(producer, "t", nil); err == nil {
		t.Error("nil logger: error = nil, want error")
	}
}

func TestNewKafka_NoBrokers(t *testing.T) {
	_, err := NewKafka(config.KafkaConfig{Topic: "t"}, testLogger())
	if !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("NewKafka() error = %v, want ErrNoBrokers", err)
	}
}

func TestEventFor_Failed(t *testing.T) {
	ev := EventFor(worker.Completion{
		ID:     "j",
		Status: worker.StatusFailed,
		Error:  "transformation failed",
		Result: &pipeline.Result{Text: "original"},
	})
	if ev.ResultLength != 0 || ev.Error == "" {
		t.Errorf("EventFor(failed) = %+v, want error and no result length", ev)
	}
}
