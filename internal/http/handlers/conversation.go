package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (ch *ConversationHandler) SendMessage(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_profile_id", err)
		return
	}
	var req services.MessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ch.conversationService.SendMessage(c.Request.Context(), targetID, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ch *ConversationHandler) List(c *gin.Context) {
	limit := parseLimit(c, 50)
	views, err := ch.conversationService.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": views})
}

func (ch *ConversationHandler) Messages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		before, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_cursor", err)
			return
		}
	}
	limit := parseLimit(c, 50)
	messages, err := ch.conversationService.Messages(c.Request.Context(), conversationID, before, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

func (ch *ConversationHandler) MarkRead(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	if err := ch.conversationService.MarkRead(c.Request.Context(), conversationID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *ConversationHandler) SetMuted(c *gin.Context) {
	ch.setParticipantFlag(c, ch.conversationService.SetMuted)
}

func (ch *ConversationHandler) SetArchived(c *gin.Context) {
	ch.setParticipantFlag(c, ch.conversationService.SetArchived)
}

func (ch *ConversationHandler) SetCallable(c *gin.Context) {
	ch.setParticipantFlag(c, ch.conversationService.SetCallable)
}

func (ch *ConversationHandler) setParticipantFlag(c *gin.Context, apply func(ctx context.Context, conversationID uuid.UUID, value bool) error) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	var req struct {
		Value *bool `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := apply(c.Request.Context(), conversationID, *req.Value); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
