package analyses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"errorlens-backend/internal/shared/metrics"
	"errorlens-backend/internal/shared/server/middleware"
	"errorlens-backend/internal/shared/server/respond"
	"errorlens-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group. The extra
// handlers run before the analyze handler only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, analyzeMiddleware ...gin.HandlerFunc) {
	analyze := append(append([]gin.HandlerFunc{}, analyzeMiddleware...), h.analyze)
	rg.POST("/analyze-image", analyze...)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

func (h *Handler) analyze(c *gin.Context) {
	requestID := middleware.RequestIDFromContext(c)

	shot, uerr := readUpload(c)
	if uerr != nil {
		metrics.IncUploadRejected(uerr.label)
		telemetry.Warn("upload.rejected", map[string]any{
			"request_id":  requestID,
			"analysis_id": uerr.body.AnalysisID,
			"status":      uerr.status,
			"label":       uerr.label,
			"reason":      uerr.body.Reason,
		})
		c.Set(middleware.AnalysisIDKey, uerr.body.AnalysisID)
		respond.Abort(c, uerr.status, uerr.body)
		return
	}

	ctx := WithRequestID(c.Request.Context(), requestID)
	resp, status := h.runAnalysis(ctx, shot)
	c.Set(middleware.AnalysisIDKey, resp.AnalysisID)
	respond.JSON(c, status, resp)
}

// runAnalysis turns a panic inside the analysis into a 500 with a failed body.
func (h *Handler) runAnalysis(ctx context.Context, shot Screenshot) (resp AnalysisResponse, status int) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = ServerErrorResponse(fmt.Sprint(rec))
			status = http.StatusInternalServerError
			metrics.IncAnalysisFailed("panic")
			telemetry.Error("analysis.panic", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"analysis_id": resp.AnalysisID,
				"error":       rec,
				"stack":       string(debug.Stack()),
			})
		}
	}()
	return h.Svc.Analyze(ctx, shot), http.StatusOK
}

func (h *Handler) list(c *gin.Context) {
	results, err := h.Svc.Repo.List(c.Request.Context())
	if err != nil {
		telemetry.Error("analyses.list_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to fetch analysis results")
		return
	}
	respond.OK(c, results)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.AnalysisIDKey, id)

	result, err := h.Svc.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Analysis not found")
		default:
			telemetry.Error("analyses.get_failed", map[string]any{
				"request_id":  middleware.RequestIDFromContext(c),
				"analysis_id": id,
				"error":       err,
			})
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to fetch analysis result")
		}
		return
	}
	respond.OK(c, result)
}
