package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kart-io/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The browser frontend is served from a different origin in development.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// streamRequest is one question over the chat socket.
type streamRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
}

// Stream protocol events. Each question produces one sources event, zero or
// more token events and exactly one done event; an error event replaces the
// remainder of the sequence.
type sourcesEvent struct {
	Type    string       `json:"type"`
	Sources []SourceInfo `json:"sources"`
}

type tokenEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type doneEvent struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Label string `json:"label"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Chat serves the streaming WebSocket endpoint. The connection stays open
// between questions.
func (h *Handler) Chat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnw("websocket read failed", "error", err)
			}
			return
		}

		if req.Question == "" {
			h.send(conn, errorEvent{Type: "error", Content: "no question provided"})
			continue
		}
		if h.demoMode {
			h.send(conn, errorEvent{Type: "error", Content: DemoResponse})
			continue
		}

		h.streamAnswer(c, conn, &req)
	}
}

func (h *Handler) streamAnswer(c *gin.Context, conn *websocket.Conn, req *streamRequest) {
	ctx := c.Request.Context()

	plan, err := h.service.PlanQuestion(ctx, req.Question)
	if err != nil {
		h.send(conn, errorEvent{Type: "error", Content: err.Error()})
		return
	}

	h.send(conn, sourcesEvent{
		Type:    "sources",
		Sources: buildSources(plan.CtxTexts, plan.Scores, plan.Metas),
	})

	stream, err := h.service.StreamPlan(ctx, plan)
	if err != nil {
		h.send(conn, errorEvent{Type: "error", Content: err.Error()})
		return
	}

	var answer strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			h.send(conn, errorEvent{Type: "error", Content: chunk.Err.Error()})
			return
		}
		answer.WriteString(chunk.Content)
		h.send(conn, tokenEvent{Type: "token", Content: chunk.Content})
	}

	h.record(ctx, req.ConversationID, req.Question, answer.String(), string(plan.Mode), plan.Label)
	h.send(conn, doneEvent{Type: "done", Mode: string(plan.Mode), Label: plan.Label})
}

func (h *Handler) send(conn *websocket.Conn, event any) {
	if err := conn.WriteJSON(event); err != nil {
		logger.Warnw("websocket write failed", "error", err)
	}
}
