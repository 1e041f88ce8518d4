package catalog

import (
	"context"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultFetchTimeout = 10 * time.Second

// Loader builds catalog snapshots from a Store. Loads that overlap share a
// single ListProducts call; nothing is cached once the call returns.
type Loader struct {
	store        Store
	group        singleflight.Group
	log          *zap.Logger
	now          func() time.Time
	fetchTimeout time.Duration
}

func NewLoader(store Store, log *zap.Logger) *Loader {
	return &Loader{
		store:        store,
		log:          log,
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
	}
}

// Load fetches the whole catalog. Any failure is returned as a
// *domain.FetchError.
//
// The shared fetch is detached from the caller that started it, so one
// caller giving up only ends its own wait.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	ch := l.group.DoChan("catalog", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()

		products, err := l.store.ListProducts(fetchCtx)
		if err != nil {
			return nil, err
		}
		return NewSnapshot(products, l.now()), nil
	})

	select {
	case <-ctx.Done():
		l.log.Warn("catalog load abandoned", zap.Error(ctx.Err()))
		return nil, &domain.FetchError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			l.log.Warn("catalog load failed", zap.Error(res.Err))
			return nil, &domain.FetchError{Err: res.Err}
		}
		snapshot := res.Val.(*Snapshot)
		l.log.Debug("catalog loaded",
			zap.Int("products", snapshot.Len()),
			zap.Bool("shared", res.Shared))
		return snapshot, nil
	}
}
