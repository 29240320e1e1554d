package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/hermes/metrics"
)

// StatsResponse combines collection stats with the metrics snapshot.
type StatsResponse struct {
	Collection string           `json:"collection"`
	Chunks     int64            `json:"chunks"`
	Metrics    metrics.Snapshot `json:"metrics"`
}

// Stats returns knowledge base statistics.
func (h *Handler) Stats(c *gin.Context) {
	chunks := int64(0)
	if !h.demoMode {
		count, err := h.store.Count(c.Request.Context(), h.collection)
		if err != nil {
			logger.Warnw("collection count failed", "collection", h.collection, "error", err)
		} else {
			chunks = count
		}
	}

	c.JSON(http.StatusOK, StatsResponse{
		Collection: h.collection,
		Chunks:     chunks,
		Metrics:    metrics.Get().GetSnapshot(),
	})
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	status := "online"
	if h.demoMode {
		status = "demo_mode"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// History returns the messages of a conversation.
func (h *Handler) History(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "conversation id required"})
		return
	}

	messages, err := h.history.Messages(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID, "messages": messages})
}
