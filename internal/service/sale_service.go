package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/fjod/go_pos/internal/metrics"
	"github.com/fjod/go_pos/internal/printing"
	"github.com/fjod/go_pos/internal/session"
	"go.uber.org/zap"
)

// SaleService owns the live sale sessions of this process. Each session is
// independent; the service only routes calls by id.
type SaleService struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	loader   session.CatalogLoader
	renderer session.InvoiceRenderer
	sink     printing.Sink
	opts     session.Options
	idleTTL  time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
}

type SaleConfig struct {
	Session session.Options
	// IdleTTL is how long an untouched session is kept before eviction.
	IdleTTL time.Duration
}

func NewSaleService(
	loader session.CatalogLoader,
	renderer session.InvoiceRenderer,
	sink printing.Sink,
	cfg SaleConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) *SaleService {
	if cfg.Session.Now == nil {
		cfg.Session.Now = time.Now
	}
	return &SaleService{
		sessions: make(map[string]*session.Session),
		loader:   loader,
		renderer: renderer,
		sink:     sink,
		opts:     cfg.Session,
		idleTTL:  cfg.IdleTTL,
		metrics:  m,
		log:      log,
	}
}

// StartSale opens a session and loads its catalog snapshot. A failed load
// is reported through the returned view (state ERROR) so the caller keeps
// the session id and can retry.
func (s *SaleService) StartSale(ctx context.Context) (session.View, error) {
	sess := session.New(s.loader, s.renderer, s.sink, s.opts, s.log)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.metrics.ActiveSales.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	s.metrics.SalesStarted.Inc()

	err := sess.Load(ctx)
	s.metrics.CatalogLoads.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		logger.WithTrace(ctx, s.log).Warn("sale started without catalog",
			zap.String("sale_id", sess.ID()), zap.Error(err))
	}
	return sess.View(), nil
}

func (s *SaleService) RetryLoad(ctx context.Context, saleID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.Load(ctx)
	s.metrics.CatalogLoads.WithLabelValues(metrics.Outcome(err)).Inc()
	return sess.View(), err
}

func (s *SaleService) GetSale(saleID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	return sess.View(), nil
}

func (s *SaleService) SubmitCustomer(saleID, name, address string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.SubmitCustomer(name, address)
	return sess.View(), err
}

func (s *SaleService) Scan(saleID, code string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	_, err = sess.Scan(code)
	s.metrics.Scans.WithLabelValues(scanOutcome(err)).Inc()
	return sess.View(), err
}

func (s *SaleService) Increment(saleID, productID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.Increment(productID)
	return sess.View(), err
}

func (s *SaleService) Decrement(saleID, productID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.Decrement(productID)
	return sess.View(), err
}

func (s *SaleService) PrintInvoice(ctx context.Context, saleID string) (document.Document, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := sess.PrintInvoice(ctx)
	if err != nil {
		var printErr *domain.PrintError
		if errors.As(err, &printErr) {
			s.metrics.Prints.WithLabelValues(string(document.KindInvoice), "error").Inc()
		}
		return doc, err
	}
	s.metrics.Prints.WithLabelValues(string(document.KindInvoice), "ok").Inc()
	return doc, nil
}

func (s *SaleService) RequestCancel(saleID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.RequestCancel()
	return sess.View(), err
}

func (s *SaleService) ConfirmCancel(saleID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	if err := sess.ConfirmCancel(); err != nil {
		return sess.View(), err
	}
	s.metrics.SalesAbandoned.Inc()
	return sess.View(), nil
}

func (s *SaleService) DismissCancel(saleID string) (session.View, error) {
	sess, err := s.get(saleID)
	if err != nil {
		return session.View{}, err
	}
	err = sess.DismissCancel()
	return sess.View(), err
}

// EvictIdle drops abandoned sessions and sessions untouched for longer than
// the idle TTL. Busy sessions are always kept.
func (s *SaleService) EvictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.Expire(now, s.idleTTL) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.metrics.SalesEvicted.Add(float64(evicted))
		s.log.Info("evicted sale sessions", zap.Int("count", evicted), zap.Int("remaining", len(s.sessions)))
	}
	s.metrics.ActiveSales.Set(float64(len(s.sessions)))
	return evicted
}

func (s *SaleService) ActiveSales() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SaleService) get(saleID string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[saleID]
	if !ok {
		return nil, fmt.Errorf("sale %q: %w", saleID, domain.ErrSessionNotFound)
	}
	return sess, nil
}

func scanOutcome(err error) string {
	var nf *domain.NotFoundError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &nf):
		return "not_found"
	case errors.Is(err, domain.ErrScanCooldown):
		return "cooldown"
	default:
		return "rejected"
	}
}
