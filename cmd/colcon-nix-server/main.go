package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	narhashrpc "colcon-nix/pkg/api/narhashrpc/v1"
	"colcon-nix/pkg/app"
	"colcon-nix/pkg/config"
	"colcon-nix/pkg/server"
	"colcon-nix/pkg/service"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "colcon-nix-server:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Config
	cfgFile := flag.String("config", "", "config file (default is $HOME/.colcon-nix/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	root := flag.String("root", "", "directory clients may hash under (overrides server.root)")
	flag.Parse()

	if err := config.Load(*cfgFile); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if *addr != "" {
		viper.Set("server.addr", *addr)
	}
	if *root != "" {
		viper.Set("server.root", *root)
	}

	// 2. Init Core Application
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer application.Close()
	log := application.Logger

	// 3. Setup Network
	listenAddr := viper.GetString("server.addr")
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}

	// 4. Setup gRPC Server
	grpcServer := server.NewServer(log)

	narhashSvc, err := service.NewNarhashService(application, viper.GetString("server.root"))
	if err != nil {
		return err
	}
	narhashrpc.RegisterNarhashServiceServer(grpcServer, narhashSvc)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(narhashrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)

	// Enable Reflection for debugging tools (grpcurl)
	reflection.Register(grpcServer)

	// 5. Start Server (Async)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("gRPC server listening",
			zap.String("addr", listenAddr),
			zap.String("root", viper.GetString("server.root")),
			zap.String("hasher", application.Hasher.Executable()),
		)
		serveErr <- grpcServer.Serve(lis)
	}()

	// 6. Graceful Shutdown
	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	healthSrv.Shutdown()
	grpcServer.GracefulStop()
	log.Info("server stopped")
	return nil
}
