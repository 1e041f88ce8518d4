package grpc

import (
	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/session"
)

type StartSaleRequest struct{}

type SaleRequest struct {
	SaleID string `json:"sale_id"`
}

type SubmitCustomerRequest struct {
	SaleID  string `json:"sale_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type ScanRequest struct {
	SaleID string `json:"sale_id"`
	Code   string `json:"code"`
}

type ItemRequest struct {
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
}

type SaleResponse struct {
	Sale session.View `json:"sale"`
}

type DocumentResponse struct {
	Document document.Document `json:"document"`
	HTML     string            `json:"html"`
}

type ListProductsRequest struct{}

type ListProductsResponse struct {
	Products []domain.ProductRecord `json:"products"`
}

type CreateProductRequest struct {
	Product domain.ProductInput `json:"product"`
}

type UpdateProductRequest struct {
	ID    string            `json:"id"`
	Patch domain.PatchInput `json:"patch"`
}

type ProductRequest struct {
	ID string `json:"id"`
}

type ProductResponse struct {
	Product domain.ProductRecord `json:"product"`
}

type DeleteProductResponse struct{}
