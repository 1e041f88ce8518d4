package printing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultRetryDelay = 2 * time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads print jobs from Kafka and passes them to a Sink on the
// print agent side. A message is committed only once its job has printed,
// so a job whose print fails is retried and survives a restart.
type Consumer struct {
	reader     messageReader
	out        Sink
	log        *zap.Logger
	retryDelay time.Duration
}

func NewConsumer(topic, groupID string, out Sink, log *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, out: out, log: log, retryDelay: defaultRetryDelay}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("error closing kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Error("error reading print job", zap.Error(err))
		return
	}

	var job Job
	if err := json.Unmarshal(m.Value, &job); err != nil {
		// never printable; skip it
		c.log.Error("error parsing print job", zap.Error(err), zap.Int64("offset", m.Offset))
		c.commit(ctx, m)
		return
	}

	for {
		err := c.out.Print(ctx, job)
		if err == nil {
			break
		}
		c.log.Error("failed to print job, retrying",
			zap.String("job_id", job.ID),
			zap.Duration("retry_in", c.retryDelay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
	c.commit(ctx, m)
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.log.Error("failed to commit print job offset", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}
