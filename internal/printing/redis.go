package printing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrSpoolEmpty = errors.New("print spool is empty")

// RedisSpool queues jobs on a per-printer Redis list. Job bodies are kept
// under their own key for a while so a reprint can be looked up by id.
type RedisSpool struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisSpool(client *redis.Client) *RedisSpool {
	return &RedisSpool{
		client:  client,
		baseTTL: 24 * time.Hour,
	}
}

func (r *RedisSpool) Print(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal print job failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Minute
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.ID), payload, r.baseTTL+jitter)
	pipe.LPush(ctx, queueKey(job.Printer), job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis spool failed: %w", err)
	}
	return nil
}

// Next pops the oldest job queued for printer, waiting up to timeout.
func (r *RedisSpool) Next(ctx context.Context, printer string, timeout time.Duration) (Job, error) {
	res, err := r.client.BRPop(ctx, timeout, queueKey(printer)).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrSpoolEmpty
	}
	if err != nil {
		return Job{}, fmt.Errorf("redis pop failed: %w", err)
	}
	// BRPOP returns [key, value]
	return r.Get(ctx, res[1])
}

// Get returns a spooled job by id.
func (r *RedisSpool) Get(ctx context.Context, jobID string) (Job, error) {
	data, err := r.client.Get(ctx, jobKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, fmt.Errorf("print job %s expired or unknown", jobID)
	}
	if err != nil {
		return Job{}, fmt.Errorf("redis get failed: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal print job failed: %w", err)
	}
	return job, nil
}

// Pending is the number of jobs waiting for printer.
func (r *RedisSpool) Pending(ctx context.Context, printer string) (int64, error) {
	n, err := r.client.LLen(ctx, queueKey(printer)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen failed: %w", err)
	}
	return n, nil
}

// Forward moves jobs queued for printer into out until ctx is done. Each
// BRPOP waits at most poll.
func (r *RedisSpool) Forward(ctx context.Context, printer string, out Sink, poll time.Duration, log *zap.Logger) {
	for ctx.Err() == nil {
		job, err := r.Next(ctx, printer, poll)
		if errors.Is(err, ErrSpoolEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("error reading print spool", zap.String("printer", printer), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if err := out.Print(ctx, job); err != nil {
			log.Error("failed to print job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

func queueKey(printer string) string {
	return fmt.Sprintf("print:%s", printer)
}

func jobKey(jobID string) string {
	return fmt.Sprintf("print-job:%s", jobID)
}
