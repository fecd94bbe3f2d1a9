package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/internal/application"
	"github.com/quicktalk/quicktalk/internal/domain/entity"
	"github.com/quicktalk/quicktalk/internal/relay"
	"github.com/quicktalk/quicktalk/pkg/response"
	"github.com/quicktalk/quicktalk/pkg/validation"
)

type ChatHandler struct {
	Svc    *application.ChatService
	Hub    *relay.Hub
	Logger *logrus.Logger
}

func NewChatHandler(svc *application.ChatService, hub *relay.Hub, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{Svc: svc, Hub: hub, Logger: logger}
}

type sendRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// Send POST /api/chat/send
// The sender is always the authenticated user; the request only names
// the recipient and the text.
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	msg, err := h.Svc.Submit(c.Request.Context(), entity.Message{
		Sender:    c.GetString("userName"),
		Recipient: req.Recipient,
		Content:   req.Content,
	})
	if err != nil {
		h.Logger.WithError(err).Error("message persist failed")
		response.Error(c, http.StatusInternalServerError, "failed to send message", nil)
		return
	}
	if msg == nil {
		// dropped by the dispatcher (blank after trimming)
		response.Error(c, http.StatusBadRequest, "invalid message", nil)
		return
	}
	response.Success(c, http.StatusCreated, msg, "message sent")
}

// History GET /api/chat/history
func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.Svc.History(c.Request.Context(), c.GetString("userName"))
	if err != nil {
		h.Logger.WithError(err).Error("history query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load history", nil)
		return
	}
	response.Success(c, http.StatusOK, msgs, "history")
}

// Conversation GET /api/chat/conversation/:peer
func (h *ChatHandler) Conversation(c *gin.Context) {
	peer := c.Param("peer")
	if peer == "" {
		response.Error(c, http.StatusBadRequest, "missing peer", nil)
		return
	}
	msgs, err := h.Svc.Conversation(c.Request.Context(), c.GetString("userName"), peer)
	if err != nil {
		h.Logger.WithError(err).Error("conversation query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load conversation", nil)
		return
	}
	response.Success(c, http.StatusOK, msgs, "conversation")
}

// Stream GET /api/chat/stream
// Server-sent events subscription to the authenticated user's inbox.
// Each newly persisted message addressed to (or sent by) the user is
// pushed as one "message" event.
func (h *ChatHandler) Stream(c *gin.Context) {
	handle := c.GetString("userName")
	ch, cancel := h.Hub.Subscribe(handle)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
