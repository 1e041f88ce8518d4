package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

type InvoiceRenderer interface {
	RenderInvoice(customer domain.CustomerInfo, cart domain.Cart, total decimal.Decimal) (document.Document, error)
}

type Options struct {
	// ScanCooldown rejects scans that arrive too soon after a successful
	// one. Zero disables it.
	ScanCooldown time.Duration
	Printer      string
	Now          func() time.Time
}

// View is an immutable copy of a session's observable state.
type View struct {
	ID            string               `json:"id"`
	State         domain.SaleState     `json:"state"`
	Customer      *domain.CustomerInfo `json:"customer,omitempty"`
	Items         []domain.LineItem    `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	Busy          bool                 `json:"busy"`
	CancelPending bool                 `json:"cancel_pending"`
	CatalogSize   int                  `json:"catalog_size"`
	LastError     string               `json:"last_error,omitempty"`
	LastDocument  string               `json:"last_document,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Session drives one sale from catalog load to printed invoice. Operations
// are serialised; while a catalog load or a print is outstanding the session
// is busy and rejects everything except View.
type Session struct {
	mu sync.Mutex

	id            string
	state         domain.SaleState
	snapshot      *catalog.Snapshot
	cart          domain.Cart
	customer      *domain.CustomerInfo
	busy          bool
	expired       bool
	cancelPending bool
	lastScan      time.Time
	lastErr       error
	lastDocument  string
	updatedAt     time.Time

	observers map[int]func(View)
	nextObs   int

	loader   CatalogLoader
	renderer InvoiceRenderer
	sink     printing.Sink
	opts     Options
	log      *zap.Logger
}

func New(loader CatalogLoader, renderer InvoiceRenderer, sink printing.Sink, opts Options, log *zap.Logger) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	id := uuid.NewString()
	return &Session{
		id:        id,
		state:     domain.SaleStateIdle,
		cart:      domain.NewCart(),
		updatedAt: opts.Now(),
		observers: make(map[int]func(View)),
		loader:    loader,
		renderer:  renderer,
		sink:      sink,
		opts:      opts,
		log:       log.With(zap.String("sale_id", id)),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to receive a View after every change. The returned
// func removes the subscription.
func (s *Session) Subscribe(fn func(View)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.nextObs
	s.nextObs++
	s.observers[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Expire retires the session if it is abandoned or has gone ttl without a
// change. A busy session never expires. Once expired, every operation
// except View fails with domain.ErrSessionNotFound. A zero ttl only
// retires abandoned sessions.
func (s *Session) Expire(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired {
		return true
	}
	if s.busy {
		return false
	}
	stale := ttl > 0 && now.Sub(s.updatedAt) >= ttl
	if s.state != domain.SaleStateAbandoned && !stale {
		return false
	}
	s.expired = true
	return true
}

// Load fetches the catalog snapshot. Allowed from Idle, and from Error as a
// retry. On failure the session moves to Error with no snapshot.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.checkTransition(domain.SaleStateAwaitingCustomerInfo); err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	s.unlockAndNotify()

	snapshot, err := s.loader.Load(ctx)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.snapshot = nil
		s.lastErr = err
		s.setState(domain.SaleStateError)
		s.unlockAndNotify()
		return err
	}
	s.snapshot = snapshot
	s.lastErr = nil
	s.setState(domain.SaleStateAwaitingCustomerInfo)
	s.unlockAndNotify()
	return nil
}

// SubmitCustomer records the buyer and opens scanning. Invalid details leave
// the session waiting for customer info.
func (s *Session) SubmitCustomer(name, address string) error {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.checkTransition(domain.SaleStateScanning); err != nil {
		s.mu.Unlock()
		return err
	}
	customer, err := domain.NewCustomerInfo(name, address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.customer = &customer
	s.setState(domain.SaleStateScanning)
	s.unlockAndNotify()
	return nil
}

// Scan resolves code against the snapshot and adds one unit to the cart.
// An unknown code returns a *domain.NotFoundError and changes nothing.
func (s *Session) Scan(code string) (domain.ProductRecord, error) {
	s.mu.Lock()
	if err := s.checkCartChange(); err != nil {
		s.mu.Unlock()
		return domain.ProductRecord{}, err
	}

	now := s.opts.Now()
	if s.opts.ScanCooldown > 0 && !s.lastScan.IsZero() && now.Sub(s.lastScan) < s.opts.ScanCooldown {
		s.mu.Unlock()
		return domain.ProductRecord{}, domain.ErrScanCooldown
	}

	product, err := s.snapshot.Resolve(code)
	if err != nil {
		s.mu.Unlock()
		s.log.Info("scanned code not in catalog", zap.String("code", code))
		return domain.ProductRecord{}, err
	}

	s.cart = s.cart.AddOrIncrement(product)
	s.lastScan = now
	s.touch()
	s.unlockAndNotify()
	return product, nil
}

// Increment adds one unit of productID, up to its stock cap.
func (s *Session) Increment(productID string) error {
	return s.changeCart(func(c domain.Cart) domain.Cart { return c.Increment(productID) })
}

// Decrement removes one unit of productID, never going below one.
func (s *Session) Decrement(productID string) error {
	return s.changeCart(func(c domain.Cart) domain.Cart { return c.Decrement(productID) })
}

func (s *Session) changeCart(op func(domain.Cart) domain.Cart) error {
	s.mu.Lock()
	if err := s.checkCartChange(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cart = op(s.cart)
	s.touch()
	s.unlockAndNotify()
	return nil
}

// PrintInvoice renders the current cart and sends it to the print sink. The
// session is Finalized afterwards whether or not the sink accepted the job;
// the cart is kept so a failed or lost print can be retried.
func (s *Session) PrintInvoice(ctx context.Context) (document.Document, error) {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return document.Document{}, err
	}
	if err := s.checkTransition(domain.SaleStateFinalized); err != nil {
		s.mu.Unlock()
		return document.Document{}, err
	}
	doc, err := s.renderer.RenderInvoice(*s.customer, s.cart, s.cart.Total())
	if err != nil {
		s.mu.Unlock()
		return document.Document{}, err
	}
	job, err := printing.NewJob(s.opts.Printer, doc)
	if err != nil {
		s.mu.Unlock()
		return document.Document{}, err
	}
	s.setState(domain.SaleStateFinalized)
	s.busy = true
	s.unlockAndNotify()

	printErr := s.sink.Print(ctx, job)

	s.mu.Lock()
	s.busy = false
	s.lastDocument = doc.ID
	if printErr != nil {
		err := &domain.PrintError{DocumentID: doc.ID, Err: printErr}
		s.lastErr = err
		s.touch()
		s.unlockAndNotify()
		s.log.Warn("invoice print failed", zap.String("document_id", doc.ID), zap.Error(printErr))
		return doc, err
	}
	s.lastErr = nil
	s.touch()
	s.unlockAndNotify()
	s.log.Info("invoice printed",
		zap.String("document_id", doc.ID),
		zap.Int("lines", len(doc.Rows)),
		zap.String("total", doc.Total.StringFixed(2)))
	return doc, nil
}

// RequestCancel opens the exit confirmation. Nothing is discarded until
// ConfirmCancel.
func (s *Session) RequestCancel() error {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.checkTransition(domain.SaleStateAbandoned); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cancelPending = true
	s.touch()
	s.unlockAndNotify()
	return nil
}

// ConfirmCancel abandons the sale and drops the cart.
func (s *Session) ConfirmCancel() error {
	s.mu.Lock()
	if s.expired {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if !s.cancelPending {
		s.mu.Unlock()
		return domain.ErrNoPendingCancel
	}
	s.cancelPending = false
	s.cart = domain.NewCart()
	s.snapshot = nil
	s.setState(domain.SaleStateAbandoned)
	s.unlockAndNotify()
	s.log.Info("sale abandoned")
	return nil
}

// DismissCancel closes the exit confirmation and keeps the sale as it was.
func (s *Session) DismissCancel() error {
	s.mu.Lock()
	if s.expired {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if !s.cancelPending {
		s.mu.Unlock()
		return domain.ErrNoPendingCancel
	}
	s.cancelPending = false
	s.touch()
	s.unlockAndNotify()
	return nil
}

func (s *Session) checkIdle() error {
	if s.expired {
		return domain.ErrSessionNotFound
	}
	if s.busy {
		return domain.ErrSessionBusy
	}
	return nil
}

func (s *Session) checkTransition(to domain.SaleState) error {
	if s.cancelPending {
		return fmt.Errorf("%w: cancel confirmation pending", domain.ErrInvalidTransition)
	}
	if !domain.CanTransitionTo(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, to)
	}
	return nil
}

func (s *Session) checkCartChange() error {
	if err := s.checkIdle(); err != nil {
		return err
	}
	if s.cancelPending {
		return fmt.Errorf("%w: cancel confirmation pending", domain.ErrInvalidTransition)
	}
	if !s.state.AcceptsCartChanges() {
		return fmt.Errorf("%w: cart is locked in state %s", domain.ErrInvalidTransition, s.state)
	}
	return nil
}

func (s *Session) setState(next domain.SaleState) {
	if s.state != next {
		s.log.Debug("sale state changed",
			zap.String("from", s.state.String()),
			zap.String("to", next.String()))
	}
	s.state = next
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = s.opts.Now()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:            s.id,
		State:         s.state,
		Items:         s.cart.Items(),
		Total:         s.cart.Total(),
		Busy:          s.busy,
		CancelPending: s.cancelPending,
		LastDocument:  s.lastDocument,
		UpdatedAt:     s.updatedAt,
	}
	if s.customer != nil {
		c := *s.customer
		v.Customer = &c
	}
	if s.snapshot != nil {
		v.CatalogSize = s.snapshot.Len()
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v
}

// unlockAndNotify releases mu and then delivers the new view, so observers
// may call back into the session.
func (s *Session) unlockAndNotify() {
	view := s.viewLocked()
	observers := make([]func(View), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(view)
	}
}
