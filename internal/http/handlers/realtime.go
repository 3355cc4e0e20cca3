package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/platform/ctxutil"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu sync.RWMutex
	// one live stream per access token; a reconnect replaces the old one
	clients map[string]*realtime.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[string]*realtime.SSEClient),
	}
}

func (rh *RealtimeHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ProfileID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if rd.TokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
		return
	}

	rh.mu.Lock()
	if existing, ok := rh.clients[rd.TokenString]; ok {
		rh.hub.CloseClient(existing)
		delete(rh.clients, rd.TokenString)
	}
	client := rh.hub.NewSSEClient(rd.ProfileID)
	rh.clients[rd.TokenString] = client
	rh.mu.Unlock()

	// every session listens on the profile's own channel
	rh.hub.AddChannel(client, rd.ProfileID.String())

	rh.hub.ServeHTTP(c.Writer, c.Request, client)

	rh.mu.Lock()
	delete(rh.clients, rd.TokenString)
	rh.mu.Unlock()
	rh.hub.CloseClient(client)
}

func (rh *RealtimeHandler) Subscribe(c *gin.Context) {
	rh.changeSubscription(c, true)
}

func (rh *RealtimeHandler) Unsubscribe(c *gin.Context) {
	rh.changeSubscription(c, false)
}

func (rh *RealtimeHandler) changeSubscription(c *gin.Context, add bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ProfileID == uuid.Nil || rd.TokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return
	}

	rh.mu.RLock()
	client, exists := rh.clients[rd.TokenString]
	rh.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this session"})
		return
	}

	if add {
		rh.hub.AddChannel(client, req.Channel)
		c.JSON(http.StatusOK, gin.H{"message": "subscribed", "channel": req.Channel})
		return
	}
	rh.hub.RemoveChannel(client, req.Channel)
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "channel": req.Channel})
}
