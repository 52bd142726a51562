// Package narhashrpc 定义 NarhashService 的 gRPC 契约。
// 请求与响应都使用 google.protobuf.StringValue，不需要单独的 .proto 生成代码。
package narhashrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "colconnix.v1.NarhashService"

	NarhashService_Hash_FullMethodName = "/colconnix.v1.NarhashService/Hash"
)

// NarhashServiceClient 是客户端 API
type NarhashServiceClient interface {
	// Hash 计算服务端路径的 SRI 哈希，请求值为路径
	Hash(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type narhashServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewNarhashServiceClient(cc grpc.ClientConnInterface) NarhashServiceClient {
	return &narhashServiceClient{cc}
}

func (c *narhashServiceClient) Hash(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, NarhashService_Hash_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NarhashServiceServer 是服务端 API
type NarhashServiceServer interface {
	Hash(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedNarhashServiceServer 可嵌入实现以获得前向兼容
type UnimplementedNarhashServiceServer struct{}

func (UnimplementedNarhashServiceServer) Hash(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Hash not implemented")
}

func RegisterNarhashServiceServer(s grpc.ServiceRegistrar, srv NarhashServiceServer) {
	s.RegisterService(&NarhashService_ServiceDesc, srv)
}

func _NarhashService_Hash_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NarhashServiceServer).Hash(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: NarhashService_Hash_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NarhashServiceServer).Hash(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var NarhashService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NarhashServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Hash",
			Handler:    _NarhashService_Hash_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "colconnix/v1/narhash.proto",
}
