package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/gpinvoice/invoicegen/internal/api/v1"
	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/rest/middleware"
	"github.com/gpinvoice/invoicegen/internal/sentry"
	"github.com/gpinvoice/invoicegen/internal/types"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Invoice *v1.InvoiceHandler
	Draft   *v1.DraftHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, sentryService *sentry.Service) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(logger, sentryService),
	)

	router.GET("/health", handlers.Health.Health)

	v1Router := router.Group("/v1")

	invoices := v1Router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/statistics", handlers.Invoice.GetStatistics)
		invoices.GET("/next-number", handlers.Invoice.NextInvoiceNumber)
		invoices.GET("/archive", handlers.Invoice.ExportArchive)
		invoices.POST("/archive", handlers.Invoice.ImportArchive)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
		invoices.GET("/:id/pdf", handlers.Invoice.RenderPDF)
		invoices.GET("/:id/image", handlers.Invoice.RenderImage)
		invoices.POST("/:id/export", handlers.Invoice.Export)
		invoices.POST("/:id/share", handlers.Invoice.Share)
		invoices.POST("/:id/share/execute", handlers.Invoice.ExecuteShare)
	}

	drafts := v1Router.Group("/drafts")
	{
		drafts.POST("", handlers.Draft.CreateDraft)
		drafts.GET("/:id", handlers.Draft.GetDraft)
		drafts.PATCH("/:id", handlers.Draft.UpdateFields)
		drafts.DELETE("/:id", handlers.Draft.DeleteDraft)
		drafts.POST("/:id/line-items", handlers.Draft.AddLineItem)
		drafts.PATCH("/:id/line-items/:item_id", handlers.Draft.UpdateLineItem)
		drafts.DELETE("/:id/line-items/:item_id", handlers.Draft.RemoveLineItem)
		drafts.POST("/:id/reset", handlers.Draft.ResetDraft)
		drafts.POST("/:id/submit", handlers.Draft.SubmitDraft)
		drafts.GET("/:id/pdf", handlers.Draft.RenderPDF)
		drafts.GET("/:id/image", handlers.Draft.RenderImage)
		drafts.POST("/:id/export", handlers.Draft.Export)
		drafts.POST("/:id/share", handlers.Draft.Share)
		drafts.POST("/:id/share/execute", handlers.Draft.ExecuteShare)
	}

	return router
}
