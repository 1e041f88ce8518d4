package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	posgrpc "github.com/fjod/go_pos/internal/grpc"
	"github.com/fjod/go_pos/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ClientMock answers every sale call with view and records the last request.
type ClientMock struct {
	mu       sync.Mutex
	view     session.View
	doc      *posgrpc.DocumentResponse
	products []domain.ProductRecord
	err      error

	lastSaleID    string
	lastProductID string
	lastCode      string
	lastCustomer  posgrpc.SubmitCustomerRequest
	lastInput     domain.ProductInput
	lastPatch     domain.PatchInput
	lastMetadata  metadata.MD
}

func (c *ClientMock) record(ctx context.Context, saleID string) (*posgrpc.SaleResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSaleID = saleID
	c.lastMetadata, _ = metadata.FromOutgoingContext(ctx)
	if c.err != nil {
		return nil, c.err
	}
	return &posgrpc.SaleResponse{Sale: c.view}, nil
}

func (c *ClientMock) StartSale(ctx context.Context, _ *posgrpc.StartSaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, "")
}

func (c *ClientMock) RetryLoad(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) GetSale(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) SubmitCustomer(ctx context.Context, in *posgrpc.SubmitCustomerRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	c.mu.Lock()
	c.lastCustomer = *in
	c.mu.Unlock()
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) Scan(ctx context.Context, in *posgrpc.ScanRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	c.mu.Lock()
	c.lastCode = in.Code
	c.mu.Unlock()
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) Increment(ctx context.Context, in *posgrpc.ItemRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	c.mu.Lock()
	c.lastProductID = in.ProductID
	c.mu.Unlock()
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) Decrement(ctx context.Context, in *posgrpc.ItemRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	c.mu.Lock()
	c.lastProductID = in.ProductID
	c.mu.Unlock()
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) PrintInvoice(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.DocumentResponse, error) {
	if _, err := c.record(ctx, in.SaleID); err != nil {
		return nil, err
	}
	return c.doc, nil
}

func (c *ClientMock) RequestCancel(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) ConfirmCancel(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) DismissCancel(ctx context.Context, in *posgrpc.SaleRequest, _ ...grpc.CallOption) (*posgrpc.SaleResponse, error) {
	return c.record(ctx, in.SaleID)
}

func (c *ClientMock) ListProducts(_ context.Context, _ *posgrpc.ListProductsRequest, _ ...grpc.CallOption) (*posgrpc.ListProductsResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &posgrpc.ListProductsResponse{Products: c.products}, nil
}

func (c *ClientMock) CreateProduct(_ context.Context, in *posgrpc.CreateProductRequest, _ ...grpc.CallOption) (*posgrpc.ProductResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastInput = in.Product
	if c.err != nil {
		return nil, c.err
	}
	return &posgrpc.ProductResponse{Product: domain.ProductRecord{ID: "new", Name: in.Product.Name}}, nil
}

func (c *ClientMock) UpdateProduct(_ context.Context, in *posgrpc.UpdateProductRequest, _ ...grpc.CallOption) (*posgrpc.ProductResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastProductID = in.ID
	c.lastPatch = in.Patch
	if c.err != nil {
		return nil, c.err
	}
	return &posgrpc.ProductResponse{Product: domain.ProductRecord{ID: in.ID}}, nil
}

func (c *ClientMock) DeleteProduct(_ context.Context, in *posgrpc.ProductRequest, _ ...grpc.CallOption) (*posgrpc.DeleteProductResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastProductID = in.ID
	if c.err != nil {
		return nil, c.err
	}
	return &posgrpc.DeleteProductResponse{}, nil
}

func (c *ClientMock) PrintLabel(_ context.Context, in *posgrpc.ProductRequest, _ ...grpc.CallOption) (*posgrpc.DocumentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastProductID = in.ID
	if c.err != nil {
		return nil, c.err
	}
	return c.doc, nil
}

func newTestRouter(client *ClientMock) http.Handler {
	return NewRouter(
		NewSaleHandler(client, 5*time.Second),
		NewProductHandler(client, 5*time.Second),
		RouterConfig{RequestTimeout: 5 * time.Second, MaxRequestBodySize: 1 << 20},
		zap.NewNop(),
	)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func scanningView() session.View {
	return session.View{
		ID:    "sale-1",
		State: domain.SaleStateScanning,
		Items: []domain.LineItem{{
			ProductID:   "P1",
			Name:        "Pen",
			UnitPrice:   decimal.RequireFromString("10"),
			Commission:  decimal.RequireFromString("2"),
			Quantity:    1,
			MaxQuantity: 3,
		}},
		Total: decimal.RequireFromString("12"),
	}
}

func TestStartSale_Created(t *testing.T) {
	client := &ClientMock{view: session.View{ID: "sale-1", State: domain.SaleStateAwaitingCustomerInfo}}

	rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/sales", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var view session.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "sale-1", view.ID)
	assert.Equal(t, domain.SaleStateAwaitingCustomerInfo, view.State)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, []string{"req-1"}, client.lastMetadata.Get("request-id"))
}

func TestScan_Success(t *testing.T) {
	client := &ClientMock{view: scanningView()}

	rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/sales/sale-1/scan", ScanRequestDTO{Code: "P1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sale-1", client.lastSaleID)
	assert.Equal(t, "P1", client.lastCode)

	var view session.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("12")))
}

func TestScan_Validation(t *testing.T) {
	client := &ClientMock{view: scanningView()}
	router := newTestRouter(client)

	rec := do(t, router, http.MethodPost, "/api/v1/sales/sale-1/scan", ScanRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/sale-1/scan", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(bad.Body).Decode(&resp))
	assert.Equal(t, "invalid_request", resp.Code)
}

func TestSubmitCustomer_ForwardsFields(t *testing.T) {
	client := &ClientMock{view: scanningView()}

	rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/sales/sale-1/customer",
		CustomerRequestDTO{Name: "Asha", Address: "12 Main St"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", client.lastCustomer.Name)
	assert.Equal(t, "12 Main St", client.lastCustomer.Address)
}

func TestItemRoutes(t *testing.T) {
	for _, action := range []string{"increment", "decrement"} {
		t.Run(action, func(t *testing.T) {
			client := &ClientMock{view: scanningView()}

			rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/sales/sale-1/items/P1/"+action, nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "sale-1", client.lastSaleID)
			assert.Equal(t, "P1", client.lastProductID)
		})
	}
}

func TestCancelRoutes(t *testing.T) {
	for _, path := range []string{"cancel", "cancel/confirm", "cancel/dismiss", "retry-load"} {
		t.Run(path, func(t *testing.T) {
			client := &ClientMock{view: scanningView()}

			rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/sales/sale-1/"+path, nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "sale-1", client.lastSaleID)
		})
	}
}

func TestPrintInvoice_Formats(t *testing.T) {
	client := &ClientMock{
		view: scanningView(),
		doc: &posgrpc.DocumentResponse{
			Document: document.Document{ID: "doc-1", Kind: document.KindInvoice, Title: "Invoice"},
			HTML:     "<html><h1>Invoice</h1></html>",
		},
	}
	router := newTestRouter(client)

	rec := do(t, router, http.MethodPost, "/api/v1/sales/sale-1/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc document.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "doc-1", doc.ID)

	rec = do(t, router, http.MethodPost, "/api/v1/sales/sale-1/invoice?format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Invoice</h1>")
}

func TestGRPCErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", status.Error(codes.NotFound, "product not found: Z"), http.StatusNotFound, "not_found"},
		{"invalid", status.Error(codes.InvalidArgument, "invalid customer name"), http.StatusBadRequest, "invalid_argument"},
		{"precondition", status.Error(codes.FailedPrecondition, "invalid transition"), http.StatusConflict, "failed_precondition"},
		{"unavailable", status.Error(codes.Unavailable, "failed to fetch data"), http.StatusServiceUnavailable, "service_unavailable"},
		{"already exists", status.Error(codes.AlreadyExists, "product already exists"), http.StatusConflict, "already_exists"},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), http.StatusGatewayTimeout, "timeout"},
		{"plain error", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &ClientMock{err: tt.err}

			rec := do(t, newTestRouter(client), http.MethodGet, "/api/v1/sales/sale-1", nil)

			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestProducts_List(t *testing.T) {
	client := &ClientMock{products: []domain.ProductRecord{{ID: "P1", Name: "Pen"}}}

	rec := do(t, newTestRouter(client), http.MethodGet, "/api/v1/products", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Pen", resp.Products[0].Name)
}

func TestProducts_EmptyListIsArray(t *testing.T) {
	client := &ClientMock{}

	rec := do(t, newTestRouter(client), http.MethodGet, "/api/v1/products", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[]}`, rec.Body.String())
}

func TestProducts_CreateUpdateDelete(t *testing.T) {
	client := &ClientMock{}
	router := newTestRouter(client)

	rec := do(t, router, http.MethodPost, "/api/v1/products", domain.ProductInput{
		Name: "Cup", Price: "45.50", Commission: "4.50", StockQuantity: "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "45.50", client.lastInput.Price.String())

	rec = do(t, router, http.MethodPatch, "/api/v1/products/P1", map[string]string{"stock_quantity": "7"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "P1", client.lastProductID)
	assert.Equal(t, "7", client.lastPatch.StockQuantity.String())

	rec = do(t, router, http.MethodDelete, "/api/v1/products/P1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProducts_NumericFields(t *testing.T) {
	client := &ClientMock{}
	router := newTestRouter(client)

	rec := do(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Pen", "price": 10, "commission": 2.5, "stock_quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "10", client.lastInput.Price.String())
	assert.Equal(t, "2.5", client.lastInput.Commission.String())
	assert.Equal(t, "3", client.lastInput.StockQuantity.String())

	rec = do(t, router, http.MethodPatch, "/api/v1/products/P1", map[string]any{"price": 12.75})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12.75", client.lastPatch.Price.String())
}

func TestProducts_PrintLabel(t *testing.T) {
	client := &ClientMock{doc: &posgrpc.DocumentResponse{
		Document: document.Document{ID: "doc-2", Kind: document.KindLabel},
		HTML:     "<html>label</html>",
	}}

	rec := do(t, newTestRouter(client), http.MethodPost, "/api/v1/products/P1/label?format=html", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "P1", client.lastProductID)
	assert.Equal(t, "<html>label</html>", rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&ClientMock{})

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
