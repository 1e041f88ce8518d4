package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	SaleServiceName    = "pos.SaleService"
	CatalogServiceName = "pos.CatalogService"
)

type SaleServiceServer interface {
	StartSale(context.Context, *StartSaleRequest) (*SaleResponse, error)
	RetryLoad(context.Context, *SaleRequest) (*SaleResponse, error)
	GetSale(context.Context, *SaleRequest) (*SaleResponse, error)
	SubmitCustomer(context.Context, *SubmitCustomerRequest) (*SaleResponse, error)
	Scan(context.Context, *ScanRequest) (*SaleResponse, error)
	Increment(context.Context, *ItemRequest) (*SaleResponse, error)
	Decrement(context.Context, *ItemRequest) (*SaleResponse, error)
	PrintInvoice(context.Context, *SaleRequest) (*DocumentResponse, error)
	RequestCancel(context.Context, *SaleRequest) (*SaleResponse, error)
	ConfirmCancel(context.Context, *SaleRequest) (*SaleResponse, error)
	DismissCancel(context.Context, *SaleRequest) (*SaleResponse, error)
}

type CatalogServiceServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *ProductRequest) (*DeleteProductResponse, error)
	PrintLabel(context.Context, *ProductRequest) (*DocumentResponse, error)
}

var SaleServiceDesc = grpc.ServiceDesc{
	ServiceName: SaleServiceName,
	HandlerType: (*SaleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(SaleServiceName, "StartSale", SaleServiceServer.StartSale),
		unary(SaleServiceName, "RetryLoad", SaleServiceServer.RetryLoad),
		unary(SaleServiceName, "GetSale", SaleServiceServer.GetSale),
		unary(SaleServiceName, "SubmitCustomer", SaleServiceServer.SubmitCustomer),
		unary(SaleServiceName, "Scan", SaleServiceServer.Scan),
		unary(SaleServiceName, "Increment", SaleServiceServer.Increment),
		unary(SaleServiceName, "Decrement", SaleServiceServer.Decrement),
		unary(SaleServiceName, "PrintInvoice", SaleServiceServer.PrintInvoice),
		unary(SaleServiceName, "RequestCancel", SaleServiceServer.RequestCancel),
		unary(SaleServiceName, "ConfirmCancel", SaleServiceServer.ConfirmCancel),
		unary(SaleServiceName, "DismissCancel", SaleServiceServer.DismissCancel),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/sale.json",
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CatalogServiceName, "ListProducts", CatalogServiceServer.ListProducts),
		unary(CatalogServiceName, "CreateProduct", CatalogServiceServer.CreateProduct),
		unary(CatalogServiceName, "UpdateProduct", CatalogServiceServer.UpdateProduct),
		unary(CatalogServiceName, "DeleteProduct", CatalogServiceServer.DeleteProduct),
		unary(CatalogServiceName, "PrintLabel", CatalogServiceServer.PrintLabel),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/catalog.json",
}

func RegisterSaleServiceServer(s grpc.ServiceRegistrar, srv SaleServiceServer) {
	s.RegisterService(&SaleServiceDesc, srv)
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// unary builds the method descriptor that generated code would otherwise
// provide: decode into Req, run interceptors, call fn on the registered
// server.
func unary[S, Req, Resp any](service, method string, fn func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := fullMethodName(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethodName(service, method string) string {
	return "/" + service + "/" + method
}
