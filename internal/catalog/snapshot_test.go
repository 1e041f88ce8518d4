package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSnapshot_Resolve(t *testing.T) {
	snap := NewSnapshot([]domain.ProductRecord{newPen()}, time.Now())

	p, err := snap.Resolve("P1")
	require.NoError(t, err)
	assert.Equal(t, "Pen", p.Name)

	p, err = snap.Resolve("  P1\n")
	require.NoError(t, err)
	assert.Equal(t, "P1", p.ID)
}

func TestSnapshot_Resolve_NotFound(t *testing.T) {
	snap := NewSnapshot([]domain.ProductRecord{newPen()}, time.Now())

	for _, code := range []string{"Z", "p1", "", "P1X"} {
		_, err := snap.Resolve(code)

		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf), "code %q", code)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	}
}

func TestSnapshot_FirstDuplicateWins(t *testing.T) {
	dup := newPen()
	dup.Name = "Other"

	snap := NewSnapshot([]domain.ProductRecord{newPen(), dup}, time.Now())

	assert.Equal(t, 1, snap.Len())
	p, _ := snap.Resolve("P1")
	assert.Equal(t, "Pen", p.Name)
}

func TestSnapshot_ProductsIsACopy(t *testing.T) {
	snap := NewSnapshot([]domain.ProductRecord{newPen()}, time.Now())

	products := snap.Products()
	products[0].Name = "changed"

	p, _ := snap.Resolve("P1")
	assert.Equal(t, "Pen", p.Name)
}

// countingStore blocks ListProducts until release is closed.
type countingStore struct {
	*MemoryStore
	calls   atomic.Int32
	release chan struct{}
}

func (s *countingStore) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	s.calls.Add(1)
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.MemoryStore.ListProducts(ctx)
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader(NewMemoryStore(newPen()), zap.NewNop())

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
}

func TestLoader_Load_FetchError(t *testing.T) {
	store := NewMemoryStore(newPen())
	store.FailListing(errors.New("connection refused"))
	loader := NewLoader(store, zap.NewNop())

	snap, err := loader.Load(context.Background())

	assert.Nil(t, snap)
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLoader_Load_NoStaleSnapshotAfterFailure(t *testing.T) {
	store := NewMemoryStore(newPen())
	loader := NewLoader(store, zap.NewNop())

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	store.FailListing(errors.New("down"))
	_, err = loader.Load(context.Background())
	assert.Error(t, err)
}

func TestLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore(newPen()), release: make(chan struct{})}
	loader := NewLoader(store, zap.NewNop())

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*Snapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := loader.Load(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}

	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// give the other callers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Equal(t, int32(1), store.calls.Load())
	for _, snap := range results {
		assert.Same(t, results[0], snap)
	}

	// nothing is cached after the call completes
	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestLoader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore(newPen()), release: make(chan struct{})}
	loader := NewLoader(store, zap.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := loader.Load(ctxA)
		errA <- err
	}()
	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		snap *Snapshot
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		snap, err := loader.Load(context.Background())
		resB <- result{snap, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		var fetchErr *domain.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(store.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, 1, res.snap.Len())
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
}

func TestLoader_FetchTimeout(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore(newPen()), release: make(chan struct{})}
	loader := NewLoader(store, zap.NewNop())
	loader.fetchTimeout = 20 * time.Millisecond

	_, err := loader.Load(context.Background())

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[
		{"id": "P1", "name": "Pen", "unit_price": "10", "commission": 2, "stock_quantity": 3},
		{"id": "C7", "name": "Cup", "unit_price": 45.5, "commission": "4.5", "stock_quantity": 10}
	]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	store, err := LoadSeedFile(path)
	require.NoError(t, err)

	products, err := store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "50", products[1].SalePrice().String())
}

func TestLoadSeedFile_RejectsInvalidProduct(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"X","name":"","unit_price":"1","stock_quantity":1}]`), 0o600))

	_, err := LoadSeedFile(path)
	assert.Error(t, err)
}
