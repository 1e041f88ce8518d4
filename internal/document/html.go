package document

import (
	"bytes"
	"fmt"
	"html/template"
)

const invoiceHTML = `<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; }
      table { width: 100%; border-collapse: collapse; margin: 20px 0; }
      table, th, td { border: 1px solid #ddd; }
      th, td { padding: 8px; text-align: left; }
      th { background-color: #f2f2f2; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    {{- with .Customer}}
    <p>Customer Name: {{.Name}}</p>
    <p>Customer Address: {{.Address}}</p>
    {{- end}}
    <table>
      <tr>
        <th>Product</th>
        <th>Price</th>
        <th>Quantity</th>
        <th>Total</th>
      </tr>
      {{- range .Rows}}
      <tr>
        <td>{{.Name}}</td>
        <td>{{money .UnitPrice}}</td>
        <td>{{.Quantity}}</td>
        <td>{{money .LineTotal}}</td>
      </tr>
      {{- end}}
    </table>
    <h3>Total Amount: {{.Currency}}{{money .Total}}</h3>
  </body>
</html>
`

const labelHTML = `<html>
  <head>
    <style>
      body { width: 150px; height: 250px; margin: 0; padding: 10px; font-family: Arial, sans-serif; text-align: center; }
      h1 { font-size: 16px; margin: 0 0 8px; }
      img { width: 120px; height: 120px; }
      p { font-size: 18px; font-weight: bold; color: green; margin: 8px 0 0; }
    </style>
  </head>
  <body>
    <h1>{{.Label.Name}}</h1>
    <img src="{{.CodeImage}}" alt="{{.Label.ProductID}}" />
    <p>{{.Currency}}{{money .Label.Price}}</p>
  </body>
</html>
`

var (
	funcs = template.FuncMap{
		"money": formatMoney,
	}
	invoiceTemplate = template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTML))
	labelTemplate   = template.Must(template.New("label").Funcs(funcs).Parse(labelHTML))
)

// labelView marks the generated QR data URI as trusted so the template does
// not filter the data: scheme.
type labelView struct {
	Document
	CodeImage template.URL
}

// RenderHTML produces the markup an HTML-capable printer consumes.
func RenderHTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer

	switch doc.Kind {
	case KindInvoice:
		if err := invoiceTemplate.Execute(&buf, doc); err != nil {
			return nil, fmt.Errorf("failed to render invoice html: %w", err)
		}
	case KindLabel:
		if doc.Label == nil {
			return nil, fmt.Errorf("label document %s has no label body", doc.ID)
		}
		view := labelView{Document: doc, CodeImage: template.URL(doc.Label.CodeImage)}
		if err := labelTemplate.Execute(&buf, view); err != nil {
			return nil, fmt.Errorf("failed to render label html: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document kind %q", doc.Kind)
	}

	return buf.Bytes(), nil
}
