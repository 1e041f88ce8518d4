package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	posgrpc "github.com/fjod/go_pos/internal/grpc"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type SaleClient interface {
	StartSale(ctx context.Context, in *posgrpc.StartSaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	RetryLoad(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	GetSale(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	SubmitCustomer(ctx context.Context, in *posgrpc.SubmitCustomerRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	Scan(ctx context.Context, in *posgrpc.ScanRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	Increment(ctx context.Context, in *posgrpc.ItemRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	Decrement(ctx context.Context, in *posgrpc.ItemRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	PrintInvoice(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.DocumentResponse, error)
	RequestCancel(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	ConfirmCancel(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
	DismissCancel(ctx context.Context, in *posgrpc.SaleRequest, opts ...grpc.CallOption) (*posgrpc.SaleResponse, error)
}

type SaleHandler struct {
	client  SaleClient
	timeout time.Duration
}

func NewSaleHandler(client SaleClient, timeout time.Duration) *SaleHandler {
	return &SaleHandler{
		client:  client,
		timeout: timeout,
	}
}

type CustomerRequestDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type ScanRequestDTO struct {
	Code string `json:"code"`
}

// outgoing bounds the call by the handler timeout and forwards the request id.
func outgoing(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	ctx = metadata.AppendToOutgoingContext(ctx, "request-id", getRequestID(r.Context()))
	return ctx, cancel
}

func (h *SaleHandler) StartSale(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	resp, err := h.client.StartSale(ctx, &posgrpc.StartSaleRequest{})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp.Sale)
}

func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	h.saleCall(w, r, h.client.GetSale)
}

func (h *SaleHandler) RetryLoad(w http.ResponseWriter, r *http.Request) {
	h.saleCall(w, r, h.client.RetryLoad)
}

func (h *SaleHandler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	h.saleCall(w, r, h.client.RequestCancel)
}

func (h *SaleHandler) ConfirmCancel(w http.ResponseWriter, r *http.Request) {
	h.saleCall(w, r, h.client.ConfirmCancel)
}

func (h *SaleHandler) DismissCancel(w http.ResponseWriter, r *http.Request) {
	h.saleCall(w, r, h.client.DismissCancel)
}

func (h *SaleHandler) SubmitCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	var req CustomerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.client.SubmitCustomer(ctx, &posgrpc.SubmitCustomerRequest{
		SaleID:  chi.URLParam(r, "id"),
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp.Sale)
}

func (h *SaleHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	var req ScanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "code is required")
		return
	}

	resp, err := h.client.Scan(ctx, &posgrpc.ScanRequest{
		SaleID: chi.URLParam(r, "id"),
		Code:   req.Code,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp.Sale)
}

func (h *SaleHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.itemCall(w, r, h.client.Increment)
}

func (h *SaleHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.itemCall(w, r, h.client.Decrement)
}

// PrintInvoice answers with the document as JSON, or with the printable page
// when called with ?format=html.
func (h *SaleHandler) PrintInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	resp, err := h.client.PrintInvoice(ctx, &posgrpc.SaleRequest{SaleID: chi.URLParam(r, "id")})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondDocument(w, r, resp)
}

func (h *SaleHandler) saleCall(
	w http.ResponseWriter,
	r *http.Request,
	call func(context.Context, *posgrpc.SaleRequest, ...grpc.CallOption) (*posgrpc.SaleResponse, error),
) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	resp, err := call(ctx, &posgrpc.SaleRequest{SaleID: chi.URLParam(r, "id")})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp.Sale)
}

func (h *SaleHandler) itemCall(
	w http.ResponseWriter,
	r *http.Request,
	call func(context.Context, *posgrpc.ItemRequest, ...grpc.CallOption) (*posgrpc.SaleResponse, error),
) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	resp, err := call(ctx, &posgrpc.ItemRequest{
		SaleID:    chi.URLParam(r, "id"),
		ProductID: chi.URLParam(r, "product_id"),
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp.Sale)
}

func respondDocument(w http.ResponseWriter, r *http.Request, resp *posgrpc.DocumentResponse) {
	if r.URL.Query().Get("format") == "html" {
		respondHTML(w, http.StatusOK, resp.HTML)
		return
	}
	respondJSON(w, http.StatusOK, resp.Document)
}
