package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "sitecheck/docs"
	"sitecheck/internal/auth"
	"sitecheck/internal/config"
	"sitecheck/internal/extractor"
	_ "sitecheck/internal/extractor/claude"
	_ "sitecheck/internal/extractor/gemini"
	_ "sitecheck/internal/extractor/openai"
	"sitecheck/internal/handler"
	"sitecheck/internal/metrics"
	"sitecheck/internal/notify/noop"
	sesnotify "sitecheck/internal/notify/ses"
	"sitecheck/internal/port"
	"sitecheck/internal/repository/postgres"
	"sitecheck/internal/router"
	"sitecheck/internal/service"
	s3storage "sitecheck/internal/storage/s3"
	"sitecheck/internal/verify"
)

// @title SiteCheck API
// @version 1.0
// @description Construction invoice verification: extracts invoices, work orders and site photos, cross-checks them and records a verdict.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)
	documentRepo := postgres.NewDocumentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	m := metrics.New()

	// Initialize extraction and verification
	parser, err := extractor.NewParserChain(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	opts := extractor.OptionsFromConfig(&cfg.Extractor)
	opts.Observer = m.ObserveExtraction
	docExtractor := extractor.NewService(parser, opts)

	engine := verify.NewEngine(verify.Rules{
		CrewHourTolerance:           cfg.Verify.CrewHourTolerance,
		MobilizationOverchargeRatio: cfg.Verify.MobilizationOverchargeRatio,
	})
	verifier := verify.NewVerifier(docExtractor, engine)

	notifier, err := newNotifier(ctx, &cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Initialize services
	recorder := service.NewRecorder(invoiceRepo, analysisRepo, documentRepo, s3Client, cfg.S3.Bucket, m)
	submissionSvc := service.NewSubmissionService(verifier, recorder, notifier, cfg.Upload, m)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, analysisRepo, documentRepo, s3Client, &cfg.S3)
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	verifyH := handler.NewVerifyHandler(submissionSvc, cfg.Upload)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	tokens := auth.NewTokenVerifier(cfg.JWT)
	r := router.Setup(tokens, m, cfg.CORS.AllowedOrigins, verifyH, invoiceH, statsH, healthH)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.Strings("extractors", extractor.Providers()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newNotifier(ctx context.Context, cfg *config.NotifyConfig) (port.VerdictNotifier, error) {
	switch cfg.Provider {
	case "ses":
		return sesnotify.NewSESNotifier(ctx, cfg)
	case "", "noop":
		return noop.NewNoopNotifier(cfg.FrontendURL), nil
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
}
