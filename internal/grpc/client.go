package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls both POS services over one connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethodName(service, method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StartSale(ctx context.Context, in *StartSaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[StartSaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "StartSale", in, opts)
}

func (c *Client) RetryLoad(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "RetryLoad", in, opts)
}

func (c *Client) GetSale(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "GetSale", in, opts)
}

func (c *Client) SubmitCustomer(ctx context.Context, in *SubmitCustomerRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SubmitCustomerRequest, SaleResponse](ctx, c.cc, SaleServiceName, "SubmitCustomer", in, opts)
}

func (c *Client) Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[ScanRequest, SaleResponse](ctx, c.cc, SaleServiceName, "Scan", in, opts)
}

func (c *Client) Increment(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[ItemRequest, SaleResponse](ctx, c.cc, SaleServiceName, "Increment", in, opts)
}

func (c *Client) Decrement(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[ItemRequest, SaleResponse](ctx, c.cc, SaleServiceName, "Decrement", in, opts)
}

func (c *Client) PrintInvoice(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*DocumentResponse, error) {
	return invoke[SaleRequest, DocumentResponse](ctx, c.cc, SaleServiceName, "PrintInvoice", in, opts)
}

func (c *Client) RequestCancel(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "RequestCancel", in, opts)
}

func (c *Client) ConfirmCancel(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "ConfirmCancel", in, opts)
}

func (c *Client) DismissCancel(ctx context.Context, in *SaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleRequest, SaleResponse](ctx, c.cc, SaleServiceName, "DismissCancel", in, opts)
}

func (c *Client) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsRequest, ListProductsResponse](ctx, c.cc, CatalogServiceName, "ListProducts", in, opts)
}

func (c *Client) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[CreateProductRequest, ProductResponse](ctx, c.cc, CatalogServiceName, "CreateProduct", in, opts)
}

func (c *Client) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[UpdateProductRequest, ProductResponse](ctx, c.cc, CatalogServiceName, "UpdateProduct", in, opts)
}

func (c *Client) DeleteProduct(ctx context.Context, in *ProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error) {
	return invoke[ProductRequest, DeleteProductResponse](ctx, c.cc, CatalogServiceName, "DeleteProduct", in, opts)
}

func (c *Client) PrintLabel(ctx context.Context, in *ProductRequest, opts ...grpc.CallOption) (*DocumentResponse, error) {
	return invoke[ProductRequest, DocumentResponse](ctx, c.cc, CatalogServiceName, "PrintLabel", in, opts)
}
