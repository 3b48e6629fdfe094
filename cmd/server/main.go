package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gpinvoice/invoicegen/internal/api"
	v1 "github.com/gpinvoice/invoicegen/internal/api/v1"
	"github.com/gpinvoice/invoicegen/internal/cache"
	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/kvstore"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/gpinvoice/invoicegen/internal/repository"
	"github.com/gpinvoice/invoicegen/internal/s3"
	"github.com/gpinvoice/invoicegen/internal/sentry"
	"github.com/gpinvoice/invoicegen/internal/service"
	"github.com/gpinvoice/invoicegen/internal/share"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/gpinvoice/invoicegen/internal/validator"
	"go.uber.org/fx"
)

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			config.NewConfig,

			logger.NewLogger,

			cache.NewInMemoryCache,

			repository.NewInvoiceRepository,

			kvstore.NewStore,

			s3.NewService,

			render.NewTypstRasterizer,
			export.NewSaver,
			export.NewExporter,

			share.NewLinkResolver,
			provideNativeSharer,
			share.NewSharer,
		),
		sentry.Module(),
	)

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSequenceService,
			service.NewInvoiceService,
			service.NewDraftService,
			service.NewExportService,
			service.NewShareService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			validator.NewValidator,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

// a server has no platform share sheet, so sharing always falls back to the menu
func provideNativeSharer() share.NativeSharer {
	return share.UnsupportedNativeSharer{}
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	sequenceService service.SequenceService,
	draftService service.DraftService,
	exportService service.ExportService,
	shareService service.ShareService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(),
		Invoice: v1.NewInvoiceHandler(invoiceService, sequenceService, exportService, shareService, logger),
		Draft:   v1.NewDraftHandler(draftService, exportService, shareService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
