package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/handler"
	"github.com/noah-isme/streetvoice-api/internal/middleware"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/service"
	"github.com/noah-isme/streetvoice-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/streetvoice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/streetvoice-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New. Export is optional.
type Handlers struct {
	Auth       *handler.AuthHandler
	Profile    *handler.ProfileHandler
	Report     *handler.ReportHandler
	Suggestion *handler.SuggestionHandler
	Location   *handler.LocationHandler
	Contact    *handler.ContactHandler
	Dashboard  *handler.DashboardHandler
	Export     *handler.ExportHandler
	Metrics    *handler.MetricsHandler
}

// Options configures the engine around the handlers.
type Options struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Authenticator  middleware.Authenticator
	AllowedOrigins []string
	UploadsDir     string
	UploadsPath    string
	EnableDocs     bool
}

// New constructs the gin engine with every route and middleware applied.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/", h.Metrics.Root)
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.UploadsDir != "" && opts.UploadsPath != "" {
		r.Static(opts.UploadsPath, opts.UploadsDir)
	}

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.POST("/login/google", h.Auth.LoginGoogle)
	r.POST("/logout", h.Auth.Logout)
	r.POST("/contact", h.Contact.Submit)
	r.GET("/api/get-location", h.Location.Reverse)

	authed := r.Group("/")
	authed.Use(middleware.JWT(opts.Authenticator))
	authed.PUT("/complete-profile", h.Profile.Complete)

	citizen := authed.Group("/")
	citizen.Use(middleware.RequireRoles(models.RoleUser))
	citizen.POST("/report-issue", h.Report.Submit)
	citizen.GET("/my-reports", h.Report.MyReports)
	citizen.DELETE("/delete-report/:id", h.Report.Delete)

	admin := authed.Group("/")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/all-reports", h.Report.List)
	admin.PUT("/update-report-status/:id", h.Report.UpdateStatus)
	admin.POST("/suggestion", h.Suggestion.Suggest)
	admin.GET("/dashboard/stats", h.Dashboard.Stats)

	if h.Export != nil {
		r.GET("/exports/download/:token", h.Export.Download)
		admin.POST("/exports", h.Export.Create)
		admin.GET("/exports/:id", h.Export.Status)
	}

	return r
}
