package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/fjod/go_pos/internal/metrics"
	"github.com/fjod/go_pos/internal/printing"
	"go.uber.org/zap"
)

type LabelRenderer interface {
	RenderLabel(p domain.ProductRecord) (document.Document, error)
}

// CatalogService manages products and prints their price labels.
type CatalogService struct {
	store    catalog.Store
	renderer LabelRenderer
	sink     printing.Sink
	printer  string
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewCatalogService(store catalog.Store, renderer LabelRenderer, sink printing.Sink, printer string, m *metrics.Metrics, log *zap.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		renderer: renderer,
		sink:     sink,
		printer:  printer,
		metrics:  m,
		log:      log,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	return s.store.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.ProductRecord, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.ProductRecord, error) {
	p, err := domain.NewProductRecord(in)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		logger.WithTrace(ctx, s.log).Error("create product failed", zap.Error(err))
		return domain.ProductRecord{}, err
	}
	logger.WithTrace(ctx, s.log).Info("product registered",
		zap.String("product_id", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in domain.PatchInput) (domain.ProductRecord, error) {
	patch, err := in.ToPatch()
	if err != nil {
		return domain.ProductRecord{}, err
	}
	return s.store.UpdateProduct(ctx, id, patch)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	logger.WithTrace(ctx, s.log).Info("product deleted", zap.String("product_id", id))
	return nil
}

// PrintLabel prints the price tag of a stored product. It does not need a
// sale session.
func (s *CatalogService) PrintLabel(ctx context.Context, id string) (document.Document, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := s.renderer.RenderLabel(p)
	if err != nil {
		return document.Document{}, err
	}
	job, err := printing.NewJob(s.printer, doc)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to build label job: %w", err)
	}

	if err := s.sink.Print(ctx, job); err != nil {
		s.metrics.Prints.WithLabelValues(string(document.KindLabel), "error").Inc()
		logger.WithTrace(ctx, s.log).Warn("label print failed",
			zap.String("product_id", id), zap.Error(err))
		return doc, &domain.PrintError{DocumentID: doc.ID, Err: err}
	}
	s.metrics.Prints.WithLabelValues(string(document.KindLabel), "ok").Inc()
	return doc, nil
}
