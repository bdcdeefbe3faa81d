package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/service"
	"github.com/noah-isme/maintenance-tracker-api/pkg/response"
)

type maintenanceService interface {
	List(ctx context.Context) ([]models.MaintenanceRecord, error)
	Get(ctx context.Context, id string) (models.MaintenanceRecord, error)
	Enriched(ctx context.Context) ([]models.EnrichedMaintenanceRecord, error)
	Create(ctx context.Context, req dto.CreateMaintenanceRequest) (models.MaintenanceRecord, error)
	Update(ctx context.Context, id string, patch repository.Patch) (models.MaintenanceRecord, error)
	ReplaceAll(ctx context.Context, records []models.MaintenanceRecord) error
}

type maintenanceViewer interface {
	Maintenance(ctx context.Context, q dto.ViewQuery) (*dto.ViewResponse[models.EnrichedMaintenanceRecord], error)
}

// MaintenanceHandler exposes the maintenance record collection.
type MaintenanceHandler struct {
	service  maintenanceService
	views    maintenanceViewer
	exporter exporter
}

// NewMaintenanceHandler constructs a maintenance handler.
func NewMaintenanceHandler(svc maintenanceService, views maintenanceViewer, exporter exporter) *MaintenanceHandler {
	return &MaintenanceHandler{service: svc, views: views, exporter: exporter}
}

// List godoc
// @Summary List maintenance records
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /maintenance [get]
func (h *MaintenanceHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records)})
}

// Enriched godoc
// @Summary List maintenance records joined with their equipment
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /maintenance/enriched [get]
func (h *MaintenanceHandler) Enriched(c *gin.Context) {
	records, err := h.service.Enriched(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	dangling := 0
	for _, r := range records {
		if _, ok := r.Equipment(); !ok {
			dangling++
		}
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records), "dangling": dangling})
}

// Get godoc
// @Summary Get maintenance record by id
// @Tags Maintenance
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /maintenance/{id} [get]
func (h *MaintenanceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Create a maintenance record, or replace the collection with mode=replace
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param mode query string false "replace to overwrite the whole collection with an array body"
// @Param payload body dto.CreateMaintenanceRequest true "Maintenance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /maintenance [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	if isReplaceMode(c) {
		var records []models.MaintenanceRecord
		if err := c.ShouldBindJSON(&records); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
		if err := h.service.ReplaceAll(c.Request.Context(), records); err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, records, storedMeta(c))
		return
	}

	var req dto.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created, storedMeta(c))
}

// Update godoc
// @Summary Merge fields into a maintenance record
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param payload body object true "id plus the fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /maintenance [put]
func (h *MaintenanceHandler) Update(c *gin.Context) {
	id, patch, err := patchFromBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, storedMeta(c))
}

// View godoc
// @Summary Filtered, sorted and grouped maintenance projection
// @Tags Maintenance
// @Produce json
// @Param q query string false "Free text search"
// @Param sort query string false "Sort column"
// @Param dir query string false "asc or desc"
// @Param group query string false "Group column"
// @Param expand query string false "Comma separated group keys to expand"
// @Success 200 {object} response.Envelope
// @Router /maintenance/view [get]
func (h *MaintenanceHandler) View(c *gin.Context) {
	q, err := viewQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.views.Maintenance(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export the maintenance projection
// @Tags Maintenance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /maintenance/export [get]
func (h *MaintenanceHandler) Export(c *gin.Context) {
	exportCollection(c, h.exporter, service.CollectionMaintenance)
}
