package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/services"
)

type AuthHandler struct {
	log                 *logger.Logger
	authService         services.AuthService
	conversationService services.ConversationService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, conversationService services.ConversationService) *AuthHandler {
	return &AuthHandler{
		log:                 log.With("handler", "AuthHandler"),
		authService:         authService,
		conversationService: conversationService,
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	profile, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	// Best effort: a failed welcome message must not fail the signup.
	if ah.conversationService != nil {
		if err := ah.conversationService.SendWelcomeMessage(c.Request.Context(), profile.ID, req.Locale); err != nil {
			ah.log.Warn("welcome message failed", "profile_id", profile.ID, "error", err)
		}
	}
	response.RespondOK(c, gin.H{"profile": profile})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	pair, err := ah.authService.Refresh(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
