package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/smberp/backend/internal/application/catalog"
	financeapp "github.com/smberp/backend/internal/application/finance"
	partnerapp "github.com/smberp/backend/internal/application/partner"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/infrastructure/cache"
	"github.com/smberp/backend/internal/infrastructure/config"
	"github.com/smberp/backend/internal/infrastructure/logger"
	"github.com/smberp/backend/internal/infrastructure/persistence"
	"github.com/smberp/backend/internal/interfaces/http/handler"
	"github.com/smberp/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	database, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	idempotencyStore := buildIdempotencyStore(cfg, log)
	defer func() { _ = idempotencyStore.Close() }()

	db := database.DB

	customerRepo := persistence.NewGormCustomerRepository(db)
	supplierRepo := persistence.NewGormSupplierRepository(db)
	itemRepo := persistence.NewGormItemRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	billRepo := persistence.NewGormBillRepository(db)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	depositRepo := persistence.NewGormDepositRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	eventPublisher := logger.NewEventLogger(log)

	customerService := partnerapp.NewCustomerService(customerRepo, partnerapp.WithCustomerEvents(eventPublisher))
	supplierService := partnerapp.NewSupplierService(supplierRepo, partnerapp.WithSupplierEvents(eventPublisher))
	itemService := catalogapp.NewItemService(itemRepo)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, customerRepo, scope,
		financeapp.WithInvoiceEvents(eventPublisher))
	paymentService := financeapp.NewPaymentService(customerRepo, paymentRepo, invoiceRepo, scope,
		financeapp.WithIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		}),
		financeapp.WithPaymentLogger(log),
		financeapp.WithPaymentEvents(eventPublisher),
	)
	payableService := financeapp.NewPayableService(supplierRepo, billRepo, orderRepo, scope,
		financeapp.WithPayableEvents(eventPublisher))
	depositService := financeapp.NewDepositService(depositRepo, scope,
		financeapp.WithDepositEvents(eventPublisher))
	reportService := financeapp.NewReportService(invoiceRepo, billRepo, paymentRepo)

	engine := router.New(cfg, log, router.Handlers{
		System:   handler.NewSystemHandler(db, version),
		Customer: handler.NewCustomerHandler(customerService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Item:     handler.NewItemHandler(itemService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Payable:  handler.NewPayableHandler(payableService),
		Deposit:  handler.NewDepositHandler(depositService),
		Report:   handler.NewReportHandler(reportService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// buildIdempotencyStore prefers Redis and falls back to the in-memory
// store when Redis is unreachable
func buildIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	store, err := cache.NewRedisIdempotencyStore(cache.RedisOptions{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		return cache.NewInMemoryIdempotencyStore()
	}
	log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	return store
}
