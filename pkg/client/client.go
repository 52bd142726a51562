package client

import (
	"context"
	"fmt"
	"time"

	narhashrpc "colcon-nix/pkg/api/narhashrpc/v1"
	"colcon-nix/pkg/narhash"
	"colcon-nix/pkg/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NarhashClient 封装了与 colcon-nix-server 的连接
type NarhashClient struct {
	conn *grpc.ClientConn

	Narhash narhashrpc.NarhashServiceClient
	Health  grpc_health_v1.HealthClient
}

// NewNarhashClient 创建客户端，连接在后台建立
func NewNarhashClient(addr string, extra ...grpc.DialOption) (*NarhashClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	opts = append(opts, extra...)

	// 这里的 err 通常只是配置错误（如地址格式不对），网络不通不会在这里报错
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}

	return &NarhashClient{
		conn:    conn,
		Narhash: narhashrpc.NewNarhashServiceClient(conn),
		Health:  grpc_health_v1.NewHealthClient(conn),
	}, nil
}

// Hash 请求服务端计算 path 的 SRI 哈希，并校验响应格式
func (c *NarhashClient) Hash(ctx context.Context, path string) (types.SRIHash, error) {
	resp, err := c.Narhash.Hash(ctx, wrapperspb.String(path))
	if err != nil {
		return "", err
	}
	h, err := narhash.ParseSRI(resp.GetValue())
	if err != nil {
		return "", fmt.Errorf("server returned invalid hash: %w", err)
	}
	return h, nil
}

// Close 关闭底层连接
func (c *NarhashClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
