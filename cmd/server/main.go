package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appfinance "github.com/erp/ledgercore/internal/application/finance"
	appinventory "github.com/erp/ledgercore/internal/application/inventory"
	"github.com/erp/ledgercore/internal/application/ledger"
	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/cache"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/erp/ledgercore/internal/interfaces/http/handler"
	"github.com/erp/ledgercore/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog := logger.New(cfg.Log, cfg.App.Env)
	ctx := context.Background()

	// Telemetry comes up first so the bridged logger and DB plugins can use it
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logs pipeline", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start profiler", zap.Error(err))
	}

	log := loggerProvider.Bridge(baseLog, cfg.Telemetry.ServiceName)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Telemetry.MetricsEnabled {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get sql.DB", zap.Error(err))
		}
		if err := telemetry.RegisterDBMetrics(db.DB, sqlDB, meter); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
	}
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	var idempotency shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStore(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotency = store
	}

	// One factory serves every service; each transaction opens its own books
	scope := persistence.NewGormTransactionScope(db.DB)
	books := ledger.NewFactory(log, ledgerMetrics)

	inventoryService := appinventory.NewInventoryService(scope, books, log)
	salesOrderService := apptrade.NewSalesOrderService(scope, books, log)
	invoiceService := apptrade.NewInvoiceService(scope, books, log)
	ledgerService := appfinance.NewLedgerService(scope, books, log)
	partyPaymentService := appfinance.NewPartyPaymentService(scope, books, log)
	partyDiscountService := appfinance.NewPartyDiscountService(scope, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := router.EngineOptions{
		Logger:         log,
		HTTP:           cfg.HTTP,
		Profiling:      profiler.IsEnabled(),
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL,
	}
	if tracerProvider.IsEnabled() {
		opts.ServiceName = cfg.Telemetry.ServiceName
	}
	if cfg.Telemetry.MetricsEnabled {
		opts.Meter = meter
	}
	engine, err := router.NewEngine(opts)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine).
		RegisterRoot(handler.NewHealthHandler(db.DB, cfg.App.Name, version)).
		Register(handler.NewInventoryHandler(inventoryService)).
		Register(handler.NewSalesOrderHandler(salesOrderService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewFinanceHandler(ledgerService, partyPaymentService, partyDiscountService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logs pipeline", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
