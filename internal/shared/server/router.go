package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"errorlens-backend/internal/analyses"
	"errorlens-backend/internal/services/health"
	"errorlens-backend/internal/shared/config"
	"errorlens-backend/internal/shared/metrics"
	"errorlens-backend/internal/shared/server/middleware"
	"errorlens-backend/internal/shared/server/respond"
	"errorlens-backend/internal/shared/telemetry"
)

// RouterDeps are the prebuilt dependencies the router wires into routes.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	Storage         health.Pinger
	AnalyzeLimiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(health.NewService(deps.Storage)))
	api.GET("/metrics", metrics.Handler())

	if deps.AnalysisHandler != nil {
		var analyzeMiddleware []gin.HandlerFunc
		if deps.AnalyzeLimiter != nil {
			analyzeMiddleware = append(analyzeMiddleware, middleware.RateLimit(deps.AnalyzeLimiter))
		}
		deps.AnalysisHandler.RegisterRoutes(api, analyzeMiddleware...)
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.Check(c.Request.Context())
		if err != nil {
			telemetry.Warn("health.storage_unreachable", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"error":      err,
			})
		}
		respond.JSON(c, http.StatusOK, status)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
