package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler func(ctx context.Context, job domain.Job) error

type Consumer struct {
	reader messageReader
	log    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, log: log}
}

// Run hands every job to handle until ctx is cancelled. Undecodable
// messages and failed jobs are logged and committed; jobs are not retried.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("kafka fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var job domain.Job
		if err := json.Unmarshal(m.Value, &job); err != nil {
			c.log.Warn("skipping undecodable job", zap.Int64("offset", m.Offset), zap.Error(err))
		} else if err := handle(ctx, job); err != nil {
			c.log.Error("job failed",
				zap.String("job_id", job.ID),
				zap.String("action", string(job.Action)),
				zap.Int64("chat_id", job.ChatID),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Error("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
