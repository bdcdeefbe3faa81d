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

type equipmentService interface {
	List(ctx context.Context) ([]models.Equipment, error)
	Get(ctx context.Context, id string) (models.Equipment, error)
	Create(ctx context.Context, req dto.CreateEquipmentRequest) (models.Equipment, error)
	Update(ctx context.Context, id string, patch repository.Patch) (models.Equipment, error)
	ReplaceAll(ctx context.Context, records []models.Equipment) error
}

type equipmentViewer interface {
	Equipment(ctx context.Context, q dto.ViewQuery) (*dto.ViewResponse[models.Equipment], error)
}

type exporter interface {
	Export(ctx context.Context, collection string, q dto.ViewQuery, format service.ExportFormat) (*service.ExportFile, error)
}

// EquipmentHandler exposes the equipment collection.
type EquipmentHandler struct {
	service  equipmentService
	views    equipmentViewer
	exporter exporter
}

// NewEquipmentHandler constructs an equipment handler.
func NewEquipmentHandler(svc equipmentService, views equipmentViewer, exporter exporter) *EquipmentHandler {
	return &EquipmentHandler{service: svc, views: views, exporter: exporter}
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get equipment by id
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create godoc
// @Summary Create equipment, or replace the collection with mode=replace
// @Tags Equipment
// @Accept json
// @Produce json
// @Param mode query string false "replace to overwrite the whole collection with an array body"
// @Param payload body dto.CreateEquipmentRequest true "Equipment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	if isReplaceMode(c) {
		var records []models.Equipment
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

	var req dto.CreateEquipmentRequest
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
// @Summary Merge fields into an equipment record
// @Tags Equipment
// @Accept json
// @Produce json
// @Param payload body object true "id plus the fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
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
// @Summary Filtered, sorted and grouped equipment projection
// @Tags Equipment
// @Produce json
// @Param q query string false "Free text search"
// @Param sort query string false "Sort column"
// @Param dir query string false "asc or desc"
// @Param group query string false "Group column"
// @Param expand query string false "Comma separated group keys to expand"
// @Success 200 {object} response.Envelope
// @Router /equipment/view [get]
func (h *EquipmentHandler) View(c *gin.Context) {
	q, err := viewQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.views.Equipment(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export the equipment projection
// @Tags Equipment
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /equipment/export [get]
func (h *EquipmentHandler) Export(c *gin.Context) {
	exportCollection(c, h.exporter, service.CollectionEquipment)
}

func exportCollection(c *gin.Context, exp exporter, collection string) {
	q, err := viewQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := exp.Export(c.Request.Context(), collection, q, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}
