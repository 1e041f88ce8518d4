package domain

import "github.com/shopspring/decimal"

// LineItem is one product in a cart. Prices and the stock cap are copied
// from the catalog when the product is first added.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Commission  decimal.Decimal `json:"commission"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
}

func (l LineItem) SalePrice() decimal.Decimal {
	return l.UnitPrice.Add(l.Commission)
}

func (l LineItem) LineTotal() decimal.Decimal {
	return l.SalePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of line items, at most one per product, in the
// order products were first added. Cart is a value: every operation returns
// a new Cart and leaves the receiver untouched.
type Cart struct {
	items []LineItem
}

func NewCart(items ...LineItem) Cart {
	return Cart{items: append([]LineItem(nil), items...)}
}

// Items returns a copy of the line items.
func (c Cart) Items() []LineItem {
	return append([]LineItem(nil), c.items...)
}

func (c Cart) Len() int {
	return len(c.items)
}

func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c Cart) Find(productID string) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// AddOrIncrement adds one unit of p. A product already in the cart has its
// quantity raised by one unless it is at the stock cap, in which case the
// cart is returned unchanged. Products with no stock are never added.
func (c Cart) AddOrIncrement(p ProductRecord) Cart {
	if i := c.indexOf(p.ID); i >= 0 {
		return c.withQuantity(i, c.items[i].Quantity+1, p.StockQuantity)
	}
	if p.StockQuantity < 1 {
		return c
	}
	next := make([]LineItem, len(c.items), len(c.items)+1)
	copy(next, c.items)
	next = append(next, LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.UnitPrice,
		Commission:  p.Commission,
		Quantity:    1,
		MaxQuantity: p.StockQuantity,
	})
	return Cart{items: next}
}

// Increment raises the quantity of productID by one, up to its stock cap.
func (c Cart) Increment(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	return c.withQuantity(i, c.items[i].Quantity+1, c.items[i].MaxQuantity)
}

// Decrement lowers the quantity of productID by one. Quantity never drops
// below one; removing a line is not supported.
func (c Cart) Decrement(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 || c.items[i].Quantity <= 1 {
		return c
	}
	return c.withQuantity(i, c.items[i].Quantity-1, c.items[i].MaxQuantity)
}

func (c Cart) Total() decimal.Decimal {
	return Total(c.items)
}

// Total sums (unit price + commission) * quantity over items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (c Cart) withQuantity(i, quantity, limit int) Cart {
	if quantity > limit || quantity < 1 || quantity == c.items[i].Quantity {
		return c
	}
	next := c.Items()
	next[i].Quantity = quantity
	return Cart{items: next}
}

func (c Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
