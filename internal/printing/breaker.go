package printing

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial job.
	OpenTimeout time.Duration
}

// BreakerSink fails fast while the wrapped sink keeps failing, so a dead
// printer does not hold every register for a full timeout.
type BreakerSink struct {
	next Sink
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerSink(next Sink, settings BreakerSettings, log *zap.Logger) *BreakerSink {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("print breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerSink{next: next, cb: cb}
}

func (b *BreakerSink) Print(ctx context.Context, job Job) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Print(ctx, job)
	})
	return err
}

func (b *BreakerSink) State() gobreaker.State {
	return b.cb.State()
}
