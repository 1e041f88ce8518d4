package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	posgrpc "github.com/fjod/go_pos/internal/grpc"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

type CatalogClient interface {
	ListProducts(ctx context.Context, in *posgrpc.ListProductsRequest, opts ...grpc.CallOption) (*posgrpc.ListProductsResponse, error)
	CreateProduct(ctx context.Context, in *posgrpc.CreateProductRequest, opts ...grpc.CallOption) (*posgrpc.ProductResponse, error)
	UpdateProduct(ctx context.Context, in *posgrpc.UpdateProductRequest, opts ...grpc.CallOption) (*posgrpc.ProductResponse, error)
	DeleteProduct(ctx context.Context, in *posgrpc.ProductRequest, opts ...grpc.CallOption) (*posgrpc.DeleteProductResponse, error)
	PrintLabel(ctx context.Context, in *posgrpc.ProductRequest, opts ...grpc.CallOption) (*posgrpc.DocumentResponse, error)
}

type ProductHandler struct {
	client  CatalogClient
	timeout time.Duration
}

func NewProductHandler(client CatalogClient, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		client:  client,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.ProductRecord `json:"products"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	res, err := h.client.ListProducts(ctx, &posgrpc.ListProductsRequest{})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	products := res.Products
	if products == nil {
		products = []domain.ProductRecord{}
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	var req domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.client.CreateProduct(ctx, &posgrpc.CreateProductRequest{Product: req})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res.Product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	var req domain.PatchInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.client.UpdateProduct(ctx, &posgrpc.UpdateProductRequest{
		ID:    chi.URLParam(r, "id"),
		Patch: req,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res.Product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	if _, err := h.client.DeleteProduct(ctx, &posgrpc.ProductRequest{ID: chi.URLParam(r, "id")}); err != nil {
		handleGRPCError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) PrintLabel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := outgoing(r, h.timeout)
	defer cancel()

	res, err := h.client.PrintLabel(ctx, &posgrpc.ProductRequest{ID: chi.URLParam(r, "id")})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	respondDocument(w, r, res)
}
