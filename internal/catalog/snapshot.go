package catalog

import (
	"strings"
	"time"

	"github.com/fjod/go_pos/internal/domain"
)

// Snapshot is a read-only view of the catalog taken when a sale starts. It is
// never modified after construction, so one snapshot may be shared by any
// number of sessions.
type Snapshot struct {
	byID     map[string]domain.ProductRecord
	ordered  []domain.ProductRecord
	loadedAt time.Time
}

// NewSnapshot indexes products by id. If two records share an id the first
// one wins.
func NewSnapshot(products []domain.ProductRecord, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		byID:     make(map[string]domain.ProductRecord, len(products)),
		ordered:  make([]domain.ProductRecord, 0, len(products)),
		loadedAt: loadedAt,
	}
	for _, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = p
		s.ordered = append(s.ordered, p)
	}
	return s
}

// Resolve maps a scanned code to its product. Surrounding whitespace from the
// scanner is ignored; otherwise the match is exact.
func (s *Snapshot) Resolve(code string) (domain.ProductRecord, error) {
	code = strings.TrimSpace(code)
	if p, ok := s.byID[code]; ok && code != "" {
		return p, nil
	}
	return domain.ProductRecord{}, &domain.NotFoundError{Code: code}
}

// Products returns the records in load order.
func (s *Snapshot) Products() []domain.ProductRecord {
	return append([]domain.ProductRecord(nil), s.ordered...)
}

func (s *Snapshot) Len() int {
	return len(s.ordered)
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
