package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/middleware"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, bool, error)
	StatusDistribution(ctx context.Context) ([]dto.Bucket, bool, error)
	HoursByDepartment(ctx context.Context) ([]dto.Bucket, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard counts, distributions and recent maintenance
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, cacheHit, start)
}

// StatusDistribution godoc
// @Summary Equipment count per status
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/status-distribution [get]
func (h *DashboardHandler) StatusDistribution(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	buckets, cacheHit, err := h.service.StatusDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, buckets, cacheHit, start)
}

// HoursByDepartment godoc
// @Summary Maintenance hours per department
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/hours-by-department [get]
func (h *DashboardHandler) HoursByDepartment(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	buckets, cacheHit, err := h.service.HoursByDepartment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, buckets, cacheHit, start)
}

func respondCached(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, meta)
}
