// Package server runs the admin HTTP service and its gRPC health listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"gorm.io/gorm"

	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/config"
	_ "github.com/afandal/storeadmin/database/migrations"
	"github.com/afandal/storeadmin/internal/kernel"
	"github.com/afandal/storeadmin/pkg/cache"
	"github.com/afandal/storeadmin/pkg/database"
	"github.com/afandal/storeadmin/pkg/event"
	"github.com/afandal/storeadmin/pkg/grpc"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/metrics"
	"github.com/afandal/storeadmin/pkg/middleware"
	"github.com/afandal/storeadmin/pkg/migration"
	"github.com/afandal/storeadmin/pkg/storage"
	"github.com/afandal/storeadmin/pkg/workerpool"
	"github.com/afandal/storeadmin/pkg/ws"
)

const (
	shutdownTimeout = 30 * time.Second
	auditWorkers    = 4

	backendProbeInterval = 30 * time.Second
)

// Start boots every subsystem, serves until SIGINT/SIGTERM and then shuts
// down in order: HTTP, audit workers, database, gRPC.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := logger.EnableMongoSink(); err != nil {
		logger.Warn("log sink: mongo disabled", "error", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("sessions fall back to memory", "error", err)
	}
	storage.Connect(ctx)
	db := connectAuditDB()

	pool := workerpool.New(auditWorkers)
	hub := ws.NewHub()
	go hub.Run(ctx)
	defer event.Listen(services.EventStatusChanged, func(ctx context.Context, payload any) {
		if err := hub.Publish(payload); err != nil {
			logger.WithCtx(ctx).Warn("ws: publish failed", "error", err)
		}
	})()

	metrics.GaugeFunc("feed", "clients", "Connected order feed clients.", func() float64 { return float64(hub.ClientCount()) })
	metrics.GaugeFunc("audit", "queued_writes", "Audit writes waiting for a worker.", func() float64 { return float64(pool.Queued()) })

	limiter := middleware.NewLimiter(config.RateLimit(), time.Minute)
	go limiter.Run(ctx)

	client := storefront.NewFromConfig()
	svc, _ := Wire(client, db, pool, hub)
	k, err := kernel.NewHTTPKernel(svc, limiter)
	if err != nil {
		return err
	}

	addr := ":" + config.AppPort()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	httpSrv := &http.Server{
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http: serve error", "error", err)
		}
	}()
	logger.Info("storeadmin running", "addr", lis.Addr().String(), "backend", config.BackendURL())

	grpcSrv, err := grpc.Start(config.GRPCPort())
	if err != nil {
		logger.Warn("gRPC health listener disabled", "error", err)
	}
	go grpcSrv.Watch(ctx, grpc.StorefrontService, backendProbeInterval, client.Ping)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				grpcSrv.SetServing(false)
				err := errors.Join(httpSrv.Shutdown(ctx), pool.Shutdown(ctx))
				if db != nil {
					err = errors.Join(err, database.Close())
				}
				return err
			},
			"grpc": func(ctx context.Context) error {
				grpcSrv.Stop()
				return nil
			},
		},
	)

	code := <-wait
	cancel()
	if code != 0 {
		return fmt.Errorf("server: shutdown finished with exit code %d", code)
	}
	return nil
}

// connectAuditDB opens the audit database and applies pending migrations.
// Failures disable the audit trail without stopping the service.
func connectAuditDB() *gorm.DB {
	if err := database.Connect(); err != nil {
		logger.Warn("audit trail disabled", "error", err)
		return nil
	}
	if _, err := migration.New(database.DB).Up(); err != nil && !errors.Is(err, migration.ErrNoMigrations) {
		logger.Warn("audit trail disabled: migrations failed", "error", err)
		return nil
	}
	return database.DB
}
