package grpc

import (
	"context"
	"strings"

	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/service"
	"github.com/fjod/go_pos/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type SaleServer struct {
	sales *service.SaleService
}

func NewSaleServer(sales *service.SaleService) *SaleServer {
	return &SaleServer{sales: sales}
}

func saleResponse(view session.View, err error) (*SaleResponse, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &SaleResponse{Sale: view}, nil
}

func requireSaleID(id string) error {
	if strings.TrimSpace(id) == "" {
		return status.Error(codes.InvalidArgument, "sale_id is required")
	}
	return nil
}

func (s *SaleServer) StartSale(ctx context.Context, _ *StartSaleRequest) (*SaleResponse, error) {
	return saleResponse(s.sales.StartSale(ctx))
}

func (s *SaleServer) RetryLoad(ctx context.Context, req *SaleRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.RetryLoad(ctx, req.SaleID))
}

func (s *SaleServer) GetSale(_ context.Context, req *SaleRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.GetSale(req.SaleID))
}

func (s *SaleServer) SubmitCustomer(_ context.Context, req *SubmitCustomerRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.SubmitCustomer(req.SaleID, req.Name, req.Address))
}

func (s *SaleServer) Scan(_ context.Context, req *ScanRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	return saleResponse(s.sales.Scan(req.SaleID, req.Code))
}

func (s *SaleServer) Increment(_ context.Context, req *ItemRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.Increment(req.SaleID, req.ProductID))
}

func (s *SaleServer) Decrement(_ context.Context, req *ItemRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.Decrement(req.SaleID, req.ProductID))
}

func (s *SaleServer) PrintInvoice(ctx context.Context, req *SaleRequest) (*DocumentResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	doc, err := s.sales.PrintInvoice(ctx, req.SaleID)
	if err != nil {
		return nil, toStatus(err)
	}
	return documentResponse(doc)
}

func (s *SaleServer) RequestCancel(_ context.Context, req *SaleRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.RequestCancel(req.SaleID))
}

func (s *SaleServer) ConfirmCancel(_ context.Context, req *SaleRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.ConfirmCancel(req.SaleID))
}

func (s *SaleServer) DismissCancel(_ context.Context, req *SaleRequest) (*SaleResponse, error) {
	if err := requireSaleID(req.SaleID); err != nil {
		return nil, err
	}
	return saleResponse(s.sales.DismissCancel(req.SaleID))
}

type CatalogServer struct {
	catalog *service.CatalogService
}

func NewCatalogServer(catalog *service.CatalogService) *CatalogServer {
	return &CatalogServer{catalog: catalog}
}

func (s *CatalogServer) ListProducts(ctx context.Context, _ *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListProductsResponse{Products: products}, nil
}

func (s *CatalogServer) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	p, err := s.catalog.CreateProduct(ctx, req.Product)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProductResponse{Product: p}, nil
}

func (s *CatalogServer) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductResponse, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	p, err := s.catalog.UpdateProduct(ctx, req.ID, req.Patch)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProductResponse{Product: p}, nil
}

func (s *CatalogServer) DeleteProduct(ctx context.Context, req *ProductRequest) (*DeleteProductResponse, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.catalog.DeleteProduct(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &DeleteProductResponse{}, nil
}

func (s *CatalogServer) PrintLabel(ctx context.Context, req *ProductRequest) (*DocumentResponse, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	doc, err := s.catalog.PrintLabel(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return documentResponse(doc)
}

func documentResponse(doc document.Document) (*DocumentResponse, error) {
	html, err := document.RenderHTML(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to render document: %v", err)
	}
	return &DocumentResponse{Document: doc, HTML: string(html)}, nil
}
