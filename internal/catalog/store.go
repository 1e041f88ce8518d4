package catalog

import (
	"context"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/google/uuid"
)

// Store is the persistent product catalog. Lookups of a missing id return
// an error matching domain.ErrProductNotFound.
type Store interface {
	ListProducts(ctx context.Context) ([]domain.ProductRecord, error)
	GetProduct(ctx context.Context, id string) (domain.ProductRecord, error)
	CreateProduct(ctx context.Context, p domain.ProductRecord) (domain.ProductRecord, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.ProductRecord, error)
	DeleteProduct(ctx context.Context, id string) error
	Close() error
}

// prepareNew assigns the id and creation time of a product about to be stored.
func prepareNew(p domain.ProductRecord) (domain.ProductRecord, error) {
	if err := p.Validate(); err != nil {
		return domain.ProductRecord{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	return p, nil
}
