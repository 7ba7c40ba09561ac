// Package kafka streams labeled ledger entries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/iho/amlsynth/internal/domain"
)

const (
	defaultBatchSize = 500
	headerRunID      = "run_id"
	headerSeed       = "seed"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// entryMessage is the value published for each ledger entry.
type entryMessage struct {
	RunID string `json:"run_id"`
	domain.LedgerEntry
}

// Sink publishes every entry of a dataset as one message keyed by account
// id, so a consumer sees each account's rows in order.
type Sink struct {
	writer    messageWriter
	batchSize int
	logger    zerolog.Logger
}

// NewSink creates a Sink writing to topic on brokers.
func NewSink(brokers []string, topic string, logger zerolog.Logger) *Sink {
	return newSinkWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, logger)
}

func newSinkWithWriter(w messageWriter, logger zerolog.Logger) *Sink {
	return &Sink{
		writer:    w,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

func (s *Sink) Name() string { return "kafka" }

// Write implements usecase.DatasetSink.
func (s *Sink) Write(ctx context.Context, ds *domain.Dataset) error {
	headers := []kafka.Header{
		{Key: headerRunID, Value: []byte(ds.RunID)},
		{Key: headerSeed, Value: []byte(fmt.Sprint(ds.Seed))},
	}

	batch := make([]kafka.Message, 0, s.batchSize)
	sent := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("publish entries: %w", err)
		}
		sent += len(batch)
		batch = batch[:0]
		return nil
	}

	for i := range ds.Entries {
		e := &ds.Entries[i]

		value, err := json.Marshal(entryMessage{RunID: ds.RunID, LedgerEntry: *e})
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", e.EntryID, err)
		}

		batch = append(batch, kafka.Message{
			Key:     []byte(e.AccountID),
			Value:   value,
			Headers: headers,
			Time:    e.Timestamp,
		})

		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	s.logger.Info().Str("run_id", ds.RunID).Int("messages", sent).Msg("entries published")

	return nil
}

// Close flushes and closes the underlying writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
