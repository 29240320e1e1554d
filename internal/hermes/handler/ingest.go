package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IndexDirectoryRequest indexes every supported document under a directory.
type IndexDirectoryRequest struct {
	Directory string `json:"directory" binding:"required"`
}

// IndexFileRequest indexes a single document.
type IndexFileRequest struct {
	Path string `json:"path" binding:"required"`
}

// IndexResponse reports how much was indexed.
type IndexResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// IndexDirectory ingests a local corpus directory.
func (h *Handler) IndexDirectory(c *gin.Context) {
	var req IndexDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	docs, chunks, err := h.indexer.IndexDirectory(c.Request.Context(), req.Directory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, IndexResponse{Documents: docs, Chunks: chunks})
}

// IndexFile ingests one document.
func (h *Handler) IndexFile(c *gin.Context) {
	var req IndexFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	chunks, err := h.indexer.IndexFile(c.Request.Context(), req.Path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, IndexResponse{Documents: 1, Chunks: chunks})
}
