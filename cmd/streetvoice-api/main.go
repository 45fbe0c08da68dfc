package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/streetvoice-api/api/swagger"
	"github.com/noah-isme/streetvoice-api/internal/handler"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/repository"
	"github.com/noah-isme/streetvoice-api/internal/server"
	"github.com/noah-isme/streetvoice-api/internal/service"
	"github.com/noah-isme/streetvoice-api/pkg/cache"
	"github.com/noah-isme/streetvoice-api/pkg/config"
	"github.com/noah-isme/streetvoice-api/pkg/database"
	"github.com/noah-isme/streetvoice-api/pkg/geocode"
	"github.com/noah-isme/streetvoice-api/pkg/googleauth"
	"github.com/noah-isme/streetvoice-api/pkg/jobs"
	"github.com/noah-isme/streetvoice-api/pkg/logger"
	"github.com/noah-isme/streetvoice-api/pkg/storage"
	"github.com/noah-isme/streetvoice-api/pkg/suggest"
)

// @title StreetVoice API
// @version 1.0.0
// @description Citizen civic-issue reporting and moderation backend
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.ReportsTTL, logr, cfg.Cache.Enabled)
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	reports := repository.NewReportRepository(db)
	audit := service.NewAuditService(repository.NewAuditRepository(db), logr)
	media := service.NewMediaService(uploads, service.MediaConfig{
		PublicPath:   cfg.Uploads.PublicPath,
		MaxSizeBytes: cfg.Uploads.MaxSizeBytes,
		Quality:      cfg.Uploads.JPEGQuality,
		MaxWidth:     cfg.Uploads.MaxWidth,
	}, logr)

	authSvc := service.NewAuthService(users,
		googleauth.NewVerifier(cfg.Google.TokenInfoURL, cfg.Google.ClientID, cfg.OutboundTimeout),
		validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		})
	reportSvc := service.NewReportService(reports, media, cacheSvc, audit, metrics, validate, logr, service.ReportConfig{
		Policy:       models.TransitionPolicy(cfg.Reports.TransitionPolicy),
		DefaultLimit: cfg.Reports.DefaultPageSize,
		MaxLimit:     cfg.Reports.MaxPageSize,
		ListTTL:      cfg.Cache.ReportsTTL,
	})
	profileSvc := service.NewProfileService(users, media, audit, validate, logr, service.ProfileConfig{
		AdminSignupCode: cfg.Profiles.AdminSignupCode,
	})
	dashboardSvc := service.NewDashboardService(reports, cacheSvc, cfg.Cache.DashboardTTL, logr)

	var suggestionSvc *service.SuggestionService
	if cfg.Suggestion.APIKey != "" {
		client := suggest.NewClient(cfg.Suggestion.URL, cfg.Suggestion.Model, cfg.Suggestion.APIKey, cfg.Suggestion.Temperature, cfg.OutboundTimeout)
		suggestionSvc = service.NewSuggestionService(client, cacheSvc, metrics, validate, logr, cfg.Cache.SuggestionTTL)
	} else {
		logr.Warn("GEMINI_API_KEY not set, suggestions disabled")
		suggestionSvc = service.NewSuggestionService(nil, cacheSvc, metrics, validate, logr, cfg.Cache.SuggestionTTL)
	}

	var locationSvc *service.LocationService
	if cfg.Geocode.APIKey != "" {
		locationSvc = service.NewLocationService(geocode.NewClient(cfg.Geocode.URL, cfg.Geocode.APIKey, cfg.OutboundTimeout), metrics, logr)
	} else {
		logr.Warn("OPENCAGE_API_KEY not set, reverse geocoding disabled")
		locationSvc = service.NewLocationService(nil, metrics, logr)
	}

	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Profile:    handler.NewProfileHandler(profileSvc, cfg.Uploads.MaxSizeBytes),
		Report:     handler.NewReportHandler(reportSvc, cfg.Uploads.MaxSizeBytes),
		Suggestion: handler.NewSuggestionHandler(suggestionSvc),
		Location:   handler.NewLocationHandler(locationSvc),
		Contact:    handler.NewContactHandler(service.NewContactService(validate, logr)),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Metrics:    handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient)),
	}

	if cfg.Exports.Enabled {
		exportHandler, shutdownExports, err := startExports(ctx, cfg, db, reports, audit, metrics, validate, logr)
		if err != nil {
			logr.Fatal("failed to start exports", zap.Error(err))
		}
		defer shutdownExports()
		handlers.Export = exportHandler
	}

	router := server.New(server.Options{
		Logger:         logr,
		Metrics:        metrics,
		Authenticator:  authSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadsDir:     uploads.Dir(),
		UploadsPath:    cfg.Uploads.PublicPath,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func startExports(ctx context.Context, cfg *config.Config, db *sqlx.DB, reports *repository.ReportRepository, audit *service.AuditService, metrics *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*handler.ExportHandler, func(), error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare export storage: %w", err)
	}
	exports := repository.NewExportRepository(db)
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	worker := service.NewExportWorker(exports, reports, files, metrics, logr)

	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnGiveUp:   worker.GiveUp,
		Logger:     logr,
	})
	queue.Start(ctx)

	exportSvc := service.NewExportService(exports, queue, files, signer, audit, validate, logr, service.ExportConfig{
		ResultTTL: cfg.Exports.SignedURLTTL,
	})
	if err := exportSvc.RecoverPending(ctx); err != nil {
		logr.Warn("failed to recover pending exports", zap.Error(err))
	}
	scheduler, err := exportSvc.ScheduleCleanup(ctx, cfg.Exports.CleanupSchedule)
	if err != nil {
		queue.Stop()
		return nil, nil, err
	}

	shutdown := func() {
		<-scheduler.Stop().Done()
		queue.Stop()
	}
	return handler.NewExportHandler(exportSvc), shutdown, nil
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"database": db}
	if client != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	return checks
}
