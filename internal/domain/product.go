package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRecord is a sellable catalog entry. ID is the code printed on the
// product label and the join key for scanning.
type ProductRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Commission    decimal.Decimal `json:"commission"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SalePrice is what the customer pays per unit.
func (p ProductRecord) SalePrice() decimal.Decimal {
	return p.UnitPrice.Add(p.Commission)
}

func (p ProductRecord) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.UnitPrice.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if p.Commission.IsNegative() {
		return &ValidationError{Field: "commission", Reason: "must not be negative"}
	}
	if p.StockQuantity < 0 {
		return &ValidationError{Field: "stock_quantity", Reason: "must not be negative"}
	}
	return nil
}

// NumberText is a numeric form field. Clients may send it as a JSON string
// or a JSON number; the text is kept as sent and parsed later.
type NumberText string

func (n *NumberText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return &ValidationError{Field: "number", Reason: "must be a string or a number"}
	}
	*n = NumberText(num.String())
	return nil
}

func (n NumberText) String() string {
	return string(n)
}

func (n NumberText) isSet() bool {
	return strings.TrimSpace(string(n)) != ""
}

// ProductInput is a product form as submitted by a client. Numeric fields
// are parsed by NewProductRecord.
type ProductInput struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         NumberText `json:"price"`
	Commission    NumberText `json:"commission"`
	StockQuantity NumberText `json:"stock_quantity"`
	ImageURL      string     `json:"image_url"`
}

func NewProductRecord(in ProductInput) (ProductRecord, error) {
	price, err := ParsePrice("price", in.Price.String())
	if err != nil {
		return ProductRecord{}, err
	}
	commission := decimal.Zero
	if in.Commission.isSet() {
		commission, err = ParsePrice("commission", in.Commission.String())
		if err != nil {
			return ProductRecord{}, err
		}
	}
	stock, err := ParseQuantity("stock_quantity", in.StockQuantity.String())
	if err != nil {
		return ProductRecord{}, err
	}

	p := ProductRecord{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		UnitPrice:     price,
		Commission:    commission,
		StockQuantity: stock,
		ImageURL:      strings.TrimSpace(in.ImageURL),
	}
	if err := p.Validate(); err != nil {
		return ProductRecord{}, err
	}
	return p, nil
}

// ProductPatch holds the fields of a partial product update. Nil fields are
// left unchanged.
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Commission    *decimal.Decimal `json:"commission,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
}

func (pp ProductPatch) IsEmpty() bool {
	return pp.Name == nil && pp.Description == nil && pp.UnitPrice == nil &&
		pp.Commission == nil && pp.StockQuantity == nil && pp.ImageURL == nil
}

// Apply returns p with the patch applied and validated.
func (pp ProductPatch) Apply(p ProductRecord) (ProductRecord, error) {
	if pp.Name != nil {
		p.Name = strings.TrimSpace(*pp.Name)
	}
	if pp.Description != nil {
		p.Description = strings.TrimSpace(*pp.Description)
	}
	if pp.UnitPrice != nil {
		p.UnitPrice = *pp.UnitPrice
	}
	if pp.Commission != nil {
		p.Commission = *pp.Commission
	}
	if pp.StockQuantity != nil {
		p.StockQuantity = *pp.StockQuantity
	}
	if pp.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*pp.ImageURL)
	}
	if err := p.Validate(); err != nil {
		return ProductRecord{}, err
	}
	return p, nil
}

// PatchInput is the text form of ProductPatch. Empty strings mean "not set".
type PatchInput struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Price         NumberText `json:"price,omitempty"`
	Commission    NumberText `json:"commission,omitempty"`
	StockQuantity NumberText `json:"stock_quantity,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
}

func (in PatchInput) ToPatch() (ProductPatch, error) {
	patch := ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if in.Price.isSet() {
		v, err := ParsePrice("price", in.Price.String())
		if err != nil {
			return ProductPatch{}, err
		}
		patch.UnitPrice = &v
	}
	if in.Commission.isSet() {
		v, err := ParsePrice("commission", in.Commission.String())
		if err != nil {
			return ProductPatch{}, err
		}
		patch.Commission = &v
	}
	if in.StockQuantity.isSet() {
		v, err := ParseQuantity("stock_quantity", in.StockQuantity.String())
		if err != nil {
			return ProductPatch{}, err
		}
		patch.StockQuantity = &v
	}
	if patch.IsEmpty() {
		return ProductPatch{}, &ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	return patch, nil
}

// ParsePrice parses a non-negative money amount.
func ParsePrice(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if v.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return v, nil
}

// ParseQuantity parses a non-negative whole number of units.
func ParseQuantity(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be a whole number"}
	}
	if v < 0 {
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return v, nil
}
