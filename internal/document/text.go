package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const receiptWidth = 40

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatText renders doc as a plain-text receipt for logs and line printers.
func FormatText(doc Document) string {
	var lines []string

	lines = append(lines, strings.Repeat("═", receiptWidth))
	lines = append(lines, center(strings.ToUpper(doc.Title)))
	lines = append(lines, strings.Repeat("═", receiptWidth))

	switch doc.Kind {
	case KindInvoice:
		if doc.Customer != nil {
			lines = append(lines, fmt.Sprintf("Customer: %s", doc.Customer.Name))
			lines = append(lines, fmt.Sprintf("Address:  %s", doc.Customer.Address))
			lines = append(lines, strings.Repeat("─", receiptWidth))
		}
		for _, row := range doc.Rows {
			lines = append(lines, fmt.Sprintf("%d x %s @ %s%s = %s%s",
				row.Quantity, row.Name,
				doc.Currency, formatMoney(row.UnitPrice),
				doc.Currency, formatMoney(row.LineTotal)))
		}
		lines = append(lines, strings.Repeat("─", receiptWidth))
		lines = append(lines, fmt.Sprintf("TOTAL: %s%s", doc.Currency, formatMoney(doc.Total)))
	case KindLabel:
		if doc.Label != nil {
			lines = append(lines, fmt.Sprintf("Code:  %s", doc.Label.ProductID))
			lines = append(lines, fmt.Sprintf("Price: %s%s", doc.Currency, formatMoney(doc.Label.Price)))
		}
	}

	lines = append(lines, strings.Repeat("═", receiptWidth))
	return strings.Join(lines, "\n")
}

func center(s string) string {
	pad := (receiptWidth - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
