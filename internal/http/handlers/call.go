package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/services"
)

type CallHandler struct {
	callService services.CallService
}

func NewCallHandler(callService services.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

func (ch *CallHandler) Initiate(c *gin.Context) {
	conversationID, ok := callConversationID(c)
	if !ok {
		return
	}
	conversation, err := ch.callService.Initiate(c.Request.Context(), conversationID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conversation})
}

func (ch *CallHandler) Accept(c *gin.Context) {
	conversationID, ok := callConversationID(c)
	if !ok {
		return
	}
	conversation, err := ch.callService.Accept(c.Request.Context(), conversationID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conversation})
}

func (ch *CallHandler) Decline(c *gin.Context) {
	ch.endCall(c, ch.callService.Decline)
}

func (ch *CallHandler) Cancel(c *gin.Context) {
	ch.endCall(c, ch.callService.Cancel)
}

func (ch *CallHandler) Timeout(c *gin.Context) {
	ch.endCall(c, ch.callService.Timeout)
}

func (ch *CallHandler) Hangup(c *gin.Context) {
	ch.endCall(c, ch.callService.Hangup)
}

func (ch *CallHandler) endCall(c *gin.Context, apply func(ctx context.Context, conversationID uuid.UUID) error) {
	conversationID, ok := callConversationID(c)
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), conversationID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func callConversationID(c *gin.Context) (uuid.UUID, bool) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return uuid.Nil, false
	}
	return conversationID, true
}
