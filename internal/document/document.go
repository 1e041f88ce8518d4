package document

import (
	"strings"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindInvoice Kind = "invoice"
	KindLabel   Kind = "label"
)

// Row is one invoice line. UnitPrice already includes commission.
type Row struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Label is the body of a price tag.
type Label struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	// CodeImage is a data URI of a PNG QR code encoding ProductID.
	CodeImage string `json:"code_image"`
}

// Document is a printable invoice or label. It is built once and not
// modified afterwards.
type Document struct {
	ID        string               `json:"id"`
	Kind      Kind                 `json:"kind"`
	Title     string               `json:"title"`
	Customer  *domain.CustomerInfo `json:"customer,omitempty"`
	Rows      []Row                `json:"rows,omitempty"`
	Label     *Label               `json:"label,omitempty"`
	Total     decimal.Decimal      `json:"total"`
	Currency  string               `json:"currency"`
	CreatedAt time.Time            `json:"created_at"`
}

const (
	defaultCurrency = "₹"
	defaultQRSize   = 120
)

type Renderer struct {
	currency string
	qrSize   int
	now      func() time.Time
	newID    func() string
}

type Option func(*Renderer)

// WithCurrency sets the symbol printed before amounts.
func WithCurrency(symbol string) Option {
	return func(r *Renderer) { r.currency = symbol }
}

// WithQRSize sets the edge length of label QR codes in pixels.
func WithQRSize(px int) Option {
	return func(r *Renderer) { r.qrSize = px }
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		currency: defaultCurrency,
		qrSize:   defaultQRSize,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderInvoice builds the invoice for cart. total must be the cart total;
// anything else is rejected with domain.ErrTotalMismatch. An empty cart
// yields an invoice with no rows and a zero total.
func (r *Renderer) RenderInvoice(customer domain.CustomerInfo, cart domain.Cart, total decimal.Decimal) (Document, error) {
	if err := customer.Validate(); err != nil {
		return Document{}, err
	}
	if !cart.Total().Equal(total) {
		return Document{}, domain.ErrTotalMismatch
	}

	items := cart.Items()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{
			Name:      item.Name,
			UnitPrice: item.SalePrice(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}

	c := customer
	return Document{
		ID:        r.newID(),
		Kind:      KindInvoice,
		Title:     "Invoice",
		Customer:  &c,
		Rows:      rows,
		Total:     total,
		Currency:  r.currency,
		CreatedAt: r.now(),
	}, nil
}

// RenderLabel builds a price tag for p: its name, a QR code of its id, and
// its sale price rounded to two decimals.
func (r *Renderer) RenderLabel(p domain.ProductRecord) (Document, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Document{}, &domain.ValidationError{Field: "product id", Reason: "is required for a label"}
	}

	image, err := qrDataURI(p.ID, r.qrSize)
	if err != nil {
		return Document{}, err
	}

	price := p.SalePrice().Round(2)
	return Document{
		ID:    r.newID(),
		Kind:  KindLabel,
		Title: p.Name,
		Label: &Label{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
			CodeImage: image,
		},
		Total:     price,
		Currency:  r.currency,
		CreatedAt: r.now(),
	}, nil
}
