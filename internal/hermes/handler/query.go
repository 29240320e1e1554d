package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// queryTimeout bounds a single non-streaming query.
const queryTimeout = 60 * time.Second

// QueryRequest is a non-streaming query.
type QueryRequest struct {
	Question       string `json:"question" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

// QueryResponse is the fulfilled answer with its sources.
type QueryResponse struct {
	Answer   string       `json:"answer"`
	Sources  []SourceInfo `json:"sources"`
	DemoMode bool         `json:"demo_mode"`
	Mode     string       `json:"mode"`
	Label    string       `json:"label"`
}

// Query answers a question in a single round trip.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	if h.demoMode {
		c.JSON(http.StatusOK, QueryResponse{
			Answer:   DemoResponse,
			Sources:  []SourceInfo{},
			DemoMode: true,
			Mode:     "chat",
			Label:    "NO_RAG",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	outcome, err := h.service.AnswerQuestion(ctx, req.Question)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    408,
				Message: "query timeout, please retry or simplify the question",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	h.record(ctx, req.ConversationID, req.Question, outcome.Answer, string(outcome.Mode), outcome.Label)

	c.JSON(http.StatusOK, QueryResponse{
		Answer:  outcome.Answer,
		Sources: buildSources(outcome.CtxTexts, outcome.Scores, outcome.Metas),
		Mode:    string(outcome.Mode),
		Label:   outcome.Label,
	})
}

// record persists the exchange. History failures never fail the request.
func (h *Handler) record(ctx context.Context, conversationID, question, answer, mode, label string) {
	if err := h.history.Record(ctx, conversationID, question, answer, mode, label); err != nil {
		logger.Warnw("history record failed", "conversation", conversationID, "error", err)
	}
}
