package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type changeStream interface {
	Serve(w http.ResponseWriter, r *http.Request, collections []string) error
}

// RealtimeHandler upgrades clients onto the collection change stream.
type RealtimeHandler struct {
	stream changeStream
	logger *zap.Logger
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(stream changeStream, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHandler{stream: stream, logger: logger}
}

// Stream godoc
// @Summary Websocket stream of collection change events
// @Tags Realtime
// @Param collection query string false "Comma separated collections to follow; all when empty"
// @Success 101
// @Router /ws [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	// The upgrader has already written an HTTP error when Serve fails.
	if err := h.stream.Serve(c.Writer, c.Request, splitList(c.Query("collection"))); err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
	}
}
