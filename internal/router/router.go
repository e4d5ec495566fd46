package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sitecheck/internal/handler"
	"sitecheck/internal/metrics"
	"sitecheck/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	verifier middleware.TokenVerifier,
	m *metrics.Metrics,
	allowedOrigins []string,
	verifyH *handler.VerifyHandler,
	invoiceH *handler.InvoiceHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(m.Middleware())

	// Health checks and operational endpoints
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Submissions accept either a bearer token or a userId form field
	v1.POST("/verify", middleware.OptionalAuth(verifier), verifyH.Verify)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(verifier))

	invoices := protected.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.DELETE("/:id", invoiceH.Delete)

	protected.GET("/stats", statsH.GetStats)

	return r
}
