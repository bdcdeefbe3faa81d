package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/middleware"
	"github.com/noah-isme/maintenance-tracker-api/pkg/response"
)

// tableParam names the path segment after /tables. It holds the collection on Open and
// the session id everywhere else; gin needs one wildcard name per segment.
const tableParam = "table"

type tableSessions interface {
	Open(ctx context.Context, collection string, req dto.CreateTableRequest) (*dto.TableResponse, error)
	Get(id string) (*dto.TableResponse, error)
	UpdateView(id string, req dto.TableViewRequest) (*dto.TableResponse, error)
	ToggleSort(id, field string) (*dto.TableResponse, error)
	ToggleGroup(id, key string) (*dto.TableResponse, error)
	Refresh(ctx context.Context, id string) (*dto.TableResponse, error)
	BeginEdit(id string, req dto.BeginEditRequest) (*dto.TableResponse, error)
	SetEditValue(id string, req dto.EditValueRequest) (*dto.TableResponse, error)
	SaveEdit(ctx context.Context, id string) (*dto.TableResponse, error)
	CancelEdit(id string) (*dto.TableResponse, error)
	Close(id string) error
}

// TableHandler exposes server-held table sessions. Operations that fail after the
// session changed state still return that state alongside the error.
type TableHandler struct {
	sessions  tableSessions
	validator *validator.Validate
}

// NewTableHandler constructs a table handler.
func NewTableHandler(sessions tableSessions, validate *validator.Validate) *TableHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &TableHandler{sessions: sessions, validator: validate}
}

// Open godoc
// @Summary Open a table session over a collection
// @Tags Tables
// @Accept json
// @Produce json
// @Param collection path string true "equipment or maintenance"
// @Param payload body dto.CreateTableRequest false "Initial view"
// @Success 201 {object} response.Envelope
// @Router /tables/{collection} [post]
func (h *TableHandler) Open(c *gin.Context) {
	var req dto.CreateTableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	table, err := h.sessions.Open(c.Request.Context(), c.Param(tableParam), req)
	if err != nil {
		respondTable(c, table, err)
		return
	}
	response.Created(c, table)
}

// Get godoc
// @Summary Current state of a table session
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tables/{id} [get]
func (h *TableHandler) Get(c *gin.Context) {
	table, err := h.sessions.Get(c.Param(tableParam))
	respondTable(c, table, err)
}

// UpdateView godoc
// @Summary Change filters, search, sort or grouping of a table session
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path string true "Table ID"
// @Param payload body dto.TableViewRequest true "View changes"
// @Success 200 {object} response.Envelope
// @Router /tables/{id}/view [patch]
func (h *TableHandler) UpdateView(c *gin.Context) {
	var req dto.TableViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	table, err := h.sessions.UpdateView(c.Param(tableParam), req)
	respondTable(c, table, err)
}

// ToggleSort godoc
// @Summary Cycle the sort of a column: ascending, descending, none
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Param field path string true "Column"
// @Success 200 {object} response.Envelope
// @Router /tables/{id}/sort/{field} [post]
func (h *TableHandler) ToggleSort(c *gin.Context) {
	table, err := h.sessions.ToggleSort(c.Param(tableParam), c.Param("field"))
	respondTable(c, table, err)
}

// ToggleGroup godoc
// @Summary Expand or collapse a group
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Param key path string true "Group key"
// @Success 200 {object} response.Envelope
// @Router /tables/{id}/groups/{key}/toggle [post]
func (h *TableHandler) ToggleGroup(c *gin.Context) {
	table, err := h.sessions.ToggleGroup(c.Param(tableParam), c.Param("key"))
	respondTable(c, table, err)
}

// Refresh godoc
// @Summary Reload a table session from the store
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /tables/{id}/refresh [post]
func (h *TableHandler) Refresh(c *gin.Context) {
	table, err := h.sessions.Refresh(c.Request.Context(), c.Param(tableParam))
	respondTable(c, table, err)
}

// BeginEdit godoc
// @Summary Start editing a cell
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path string true "Table ID"
// @Param payload body dto.BeginEditRequest true "Cell"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tables/{id}/edit [post]
func (h *TableHandler) BeginEdit(c *gin.Context) {
	var req dto.BeginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	table, err := h.sessions.BeginEdit(c.Param(tableParam), req)
	respondTable(c, table, err)
}

// SetEditValue godoc
// @Summary Replace the buffered value of the active edit
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path string true "Table ID"
// @Param payload body dto.EditValueRequest true "Value"
// @Success 200 {object} response.Envelope
// @Router /tables/{id}/edit [patch]
func (h *TableHandler) SetEditValue(c *gin.Context) {
	var req dto.EditValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	table, err := h.sessions.SetEditValue(c.Param(tableParam), req)
	respondTable(c, table, err)
}

// SaveEdit godoc
// @Summary Persist the active edit
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /tables/{id}/edit/save [post]
func (h *TableHandler) SaveEdit(c *gin.Context) {
	table, err := h.sessions.SaveEdit(c.Request.Context(), c.Param(tableParam))
	if err == nil {
		middleware.SetMessage(c, storedMessage)
	}
	respondTable(c, table, err)
}

// CancelEdit godoc
// @Summary Abandon the active edit
// @Tags Tables
// @Produce json
// @Param id path string true "Table ID"
// @Success 200 {object} response.Envelope
// @Router /tables/{id}/edit [delete]
func (h *TableHandler) CancelEdit(c *gin.Context) {
	table, err := h.sessions.CancelEdit(c.Param(tableParam))
	respondTable(c, table, err)
}

// Close godoc
// @Summary Close a table session
// @Tags Tables
// @Param id path string true "Table ID"
// @Success 204
// @Router /tables/{id} [delete]
func (h *TableHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Param(tableParam)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// respondTable renders table, or the error with the table state attached when there is one.
func respondTable(c *gin.Context, table *dto.TableResponse, err error) {
	if err != nil {
		if table != nil {
			response.ErrorWithData(c, err, table)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table, middleware.ExtractMeta(c))
}
