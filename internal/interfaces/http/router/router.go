package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smberp/backend/internal/infrastructure/config"
	"github.com/smberp/backend/internal/infrastructure/logger"
	"github.com/smberp/backend/internal/interfaces/http/dto"
	"github.com/smberp/backend/internal/interfaces/http/handler"
	"github.com/smberp/backend/internal/interfaces/http/middleware"
)

// Handlers bundles all HTTP handlers the router mounts
type Handlers struct {
	System   *handler.SystemHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	Item     *handler.ItemHandler
	Invoice  *handler.InvoiceHandler
	Payment  *handler.PaymentHandler
	Payable  *handler.PayableHandler
	Deposit  *handler.DepositHandler
	Report   *handler.ReportHandler
}

// New builds the gin engine with middleware and all routes mounted
func New(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.RegisterCustomValidators()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	v1 := engine.Group("/api/v1")

	partnerGroup := v1.Group("/partner")
	{
		customers := partnerGroup.Group("/customers")
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.POST("/:id/deactivate", h.Customer.Deactivate)
		customers.POST("/:id/activate", h.Customer.Activate)

		suppliers := partnerGroup.Group("/suppliers")
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.PUT("/:id/terms", h.Supplier.SetTerms)
		suppliers.POST("/:id/deactivate", h.Supplier.Deactivate)
	}

	catalogGroup := v1.Group("/catalog")
	{
		items := catalogGroup.Group("/items")
		items.POST("", h.Item.Create)
		items.GET("", h.Item.List)
		items.GET("/:id", h.Item.Get)
		items.PUT("/:id/pricing", h.Item.UpdatePricing)
		items.PUT("/:id/components", h.Item.SetComponents)
		items.POST("/:id/adjust", h.Item.AdjustOnHand)
		items.DELETE("/:id", h.Item.Delete)
	}

	financeGroup := v1.Group("/finance")
	{
		invoices := financeGroup.Group("/invoices")
		invoices.POST("", h.Invoice.Create)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/finalize", h.Invoice.Finalize)

		payments := financeGroup.Group("/payments")
		payments.POST("/apply", h.Payment.Apply)
		payments.GET("", h.Payment.List)
		payments.GET("/undeposited", h.Payment.ListUndeposited)
		payments.GET("/:id", h.Payment.Get)
		payments.POST("/:id/cancel", h.Payment.Cancel)

		bills := financeGroup.Group("/bills")
		bills.POST("", h.Payable.CreateBill)
		bills.GET("", h.Payable.ListBills)
		bills.GET("/:id", h.Payable.GetBill)
		bills.POST("/:id/payments", h.Payable.PayBill)

		orders := financeGroup.Group("/purchase-orders")
		orders.POST("", h.Payable.CreatePurchaseOrder)
		orders.GET("", h.Payable.ListPurchaseOrders)
		orders.GET("/:id", h.Payable.GetPurchaseOrder)
		orders.POST("/:id/payments", h.Payable.PayPurchaseOrder)

		deposits := financeGroup.Group("/deposits")
		deposits.POST("", h.Deposit.Record)
		deposits.GET("", h.Deposit.List)
		deposits.GET("/:id", h.Deposit.Get)
		deposits.POST("/:id/void", h.Deposit.Void)

		financeGroup.GET("/customers/:id/invoices/open", h.Invoice.ListOpenByCustomer)
		financeGroup.GET("/suppliers/:id/documents/open", h.Payable.ListOpenSupplierDocuments)

		reports := financeGroup.Group("/reports")
		reports.GET("/receivables", h.Report.Receivables)
		reports.GET("/payables", h.Report.Payables)
		reports.GET("/payments", h.Report.Payments)
	}

	return engine
}
