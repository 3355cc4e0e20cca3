package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/platform/ctxutil"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/services"
)

type InteractionHandler struct {
	interactionService   services.InteractionService
	compatibilityService services.CompatibilityService
}

func NewInteractionHandler(interactionService services.InteractionService, compatibilityService services.CompatibilityService) *InteractionHandler {
	return &InteractionHandler{
		interactionService:   interactionService,
		compatibilityService: compatibilityService,
	}
}

func (ih *InteractionHandler) Decide(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_profile_id", err)
		return
	}
	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ih.interactionService.Decide(c.Request.Context(), targetID, req.Kind)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ih *InteractionHandler) LikesSent(c *gin.Context) {
	limit := parseLimit(c, 50)
	edges, err := ih.interactionService.LikesSent(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": edges})
}

func (ih *InteractionHandler) LikesReceived(c *gin.Context) {
	limit := parseLimit(c, 50)
	edges, err := ih.interactionService.LikesReceived(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": edges})
}

func (ih *InteractionHandler) MarkLikesSeen(c *gin.Context) {
	if err := ih.interactionService.MarkLikesSeen(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ih *InteractionHandler) Matches(c *gin.Context) {
	profiles, err := ih.interactionService.Matches(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": profiles})
}

func (ih *InteractionHandler) Counters(c *gin.Context) {
	counters, err := ih.interactionService.Counters(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, counters)
}

// CheckCompatibility reports whether the caller and the candidate accept
// each other's dating preferences in both directions.
func (ih *InteractionHandler) CheckCompatibility(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_profile_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ProfileID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	compatible, err := ih.compatibilityService.CheckPair(dbctx.Context{Ctx: c.Request.Context()}, rd.ProfileID, candidateID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"compatible": compatible})
}

func parseLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
