package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPen() domain.ProductRecord {
	return domain.ProductRecord{
		ID:            "P1",
		Name:          "Pen",
		Description:   "Blue ink",
		UnitPrice:     decimal.RequireFromString("10.25"),
		Commission:    decimal.RequireFromString("2"),
		StockQuantity: 3,
	}
}

// testStoreContract runs the behaviour every Store implementation shares.
func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("empty catalog", func(t *testing.T) {
		products, err := store.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("create and get", func(t *testing.T) {
		created, err := store.CreateProduct(ctx, newPen())
		require.NoError(t, err)
		assert.Equal(t, "P1", created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := store.GetProduct(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, "Pen", got.Name)
		assert.Equal(t, "Blue ink", got.Description)
		assert.True(t, decimal.RequireFromString("10.25").Equal(got.UnitPrice), "got %s", got.UnitPrice)
		assert.True(t, decimal.RequireFromString("12.25").Equal(got.SalePrice()))
		assert.Equal(t, 3, got.StockQuantity)
	})

	t.Run("create assigns id", func(t *testing.T) {
		p := newPen()
		p.ID = ""
		p.Name = "Cup"
		p.CreatedAt = time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)

		created, err := store.CreateProduct(ctx, p)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		products, err := store.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "P1", products[0].ID)
	})

	t.Run("create rejects duplicate id", func(t *testing.T) {
		_, err := store.CreateProduct(ctx, newPen())
		assert.ErrorIs(t, err, domain.ErrProductExists)
	})

	t.Run("create rejects invalid", func(t *testing.T) {
		p := newPen()
		p.ID = "bad"
		p.StockQuantity = -1

		_, err := store.CreateProduct(ctx, p)
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("update", func(t *testing.T) {
		stock := 9
		price := decimal.RequireFromString("11.50")

		updated, err := store.UpdateProduct(ctx, "P1", domain.ProductPatch{StockQuantity: &stock, UnitPrice: &price})
		require.NoError(t, err)
		assert.Equal(t, 9, updated.StockQuantity)

		got, err := store.GetProduct(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, 9, got.StockQuantity)
		assert.Equal(t, "Pen", got.Name)
		assert.True(t, price.Equal(got.UnitPrice))
	})

	t.Run("update missing", func(t *testing.T) {
		stock := 1
		_, err := store.UpdateProduct(ctx, "missing", domain.ProductPatch{StockQuantity: &stock})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteProduct(ctx, "P1"))

		_, err := store.GetProduct(ctx, "P1")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		err = store.DeleteProduct(ctx, "P1")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := NewSQLiteStore(t.TempDir() + "/catalog.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.RunMigrations())
	// second run is a no-op
	require.NoError(t, store.RunMigrations())

	testStoreContract(t, store)
}
