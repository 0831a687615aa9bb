package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/tkp/internal/app"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/metrics"
	"github.com/joseph-ayodele/tkp/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.Recorder{}
	pipe, err := app.NewPipeline(cfg, rec, logger)
	if err != nil {
		logger.Error("pipeline.init.failed", "err", err)
		os.Exit(1)
	}
	if _, err := pipe.Docs.SystemContext(cfg.Reference.MaterialsFile, cfg.Reference.InstructionsFile); err != nil {
		// not fatal: files may be provisioned after start
		logger.Warn("refdocs.preload.failed", "dir", cfg.Reference.Dir, "err", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.NewHandler(pipe.Runner, pipe.Renderer, rec, logger))
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health + reflection for orchestrators, optional
	var grpcSrv *grpc.Server
	var hs *health.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("grpc.listen.failed", "addr", cfg.Server.GRPCAddr, "err", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer()
		hs = health.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, hs)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		reflection.Register(grpcSrv)

		go func() {
			logger.Info("grpc.serve", "addr", cfg.Server.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("grpc.serve.failed", "err", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.serve",
			"addr", cfg.Server.HTTPAddr,
			"provider", cfg.LLM.Provider,
			"workers", cfg.Pipeline.Workers,
			"strict_schema", cfg.LLM.StrictSchema)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown.start")
	case err := <-errCh:
		logger.Error("http.serve.failed", "err", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if hs != nil {
		hs.Shutdown()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http.shutdown.failed", "err", err)
	}
	pipe.Runner.Shutdown(shutdownCtx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	logger.Info("shutdown.ok")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
