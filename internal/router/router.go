package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gstledger/internal/handler"
	"gstledger/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger logrus.FieldLogger,
	allowedOrigins []string,
	importH *handler.ImportHandler,
	ledgerH *handler.LedgerHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	imports := v1.Group("/imports")
	imports.POST("", importH.Upload)
	imports.GET("", importH.List)
	imports.GET("/:id", importH.GetByID)
	imports.GET("/:id/file", importH.Download)
	imports.POST("/:id/process", importH.Process)
	imports.POST("/:id/reparse", importH.Reparse)
	imports.DELETE("/:id", importH.Delete)

	ledgers := v1.Group("/ledgers")
	ledgers.GET("/:id", ledgerH.Get)
	ledgers.PATCH("/:id/views/:view", ledgerH.UpdateView)
	ledgers.POST("/:id/rows", ledgerH.AppendRows)
	ledgers.POST("/:id/reconcile", ledgerH.Reconcile)
	ledgers.DELETE("/:id", ledgerH.Delete)

	return r
}
