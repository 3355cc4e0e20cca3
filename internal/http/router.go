package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/velora-app/velora-backend/internal/http/handlers"
	httpMW "github.com/velora-app/velora-backend/internal/http/middleware"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	ProfileHandler      *httpH.ProfileHandler
	InteractionHandler  *httpH.InteractionHandler
	ConversationHandler *httpH.ConversationHandler
	CallHandler         *httpH.CallHandler
	DiscoveryHandler    *httpH.DiscoveryHandler
	PostHandler         *httpH.PostHandler
	RealtimeHandler     *httpH.RealtimeHandler
	MediaHandler        *httpH.MediaHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("velora-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MediaHandler != nil {
		r.GET("/media/*path", cfg.MediaHandler.Serve)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.Stream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.Subscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.Unsubscribe)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/me", cfg.ProfileHandler.GetMe)
			protected.PATCH("/me", cfg.ProfileHandler.UpdateMe)
			protected.POST("/me/activity", cfg.ProfileHandler.SetActivity)
			protected.POST("/me/avatar", cfg.ProfileHandler.UploadAvatar)
			protected.GET("/me/blocked", cfg.ProfileHandler.ListBlocked)
			protected.GET("/me/tags", cfg.ProfileHandler.GetTags)
			protected.PUT("/me/tags", cfg.ProfileHandler.SetTags)
			protected.GET("/me/search-filter", cfg.ProfileHandler.GetSearchFilter)
			protected.PUT("/me/search-filter", cfg.ProfileHandler.SetSearchFilter)

			protected.GET("/profiles/:id", cfg.ProfileHandler.GetProfile)
			protected.POST("/profiles/:id/block", cfg.ProfileHandler.Block)
			protected.DELETE("/profiles/:id/block", cfg.ProfileHandler.Unblock)
		}

		if cfg.InteractionHandler != nil {
			protected.POST("/profiles/:id/decide", cfg.InteractionHandler.Decide)
			protected.GET("/profiles/:id/compatibility", cfg.InteractionHandler.CheckCompatibility)
			protected.GET("/likes", cfg.InteractionHandler.LikesReceived)
			protected.GET("/likes/sent", cfg.InteractionHandler.LikesSent)
			protected.POST("/likes/seen", cfg.InteractionHandler.MarkLikesSeen)
			protected.GET("/matches", cfg.InteractionHandler.Matches)
			protected.GET("/counters", cfg.InteractionHandler.Counters)
		}

		if cfg.ConversationHandler != nil {
			protected.POST("/profiles/:id/messages", cfg.ConversationHandler.SendMessage)
			protected.GET("/conversations", cfg.ConversationHandler.List)
			protected.GET("/conversations/:id/messages", cfg.ConversationHandler.Messages)
			protected.POST("/conversations/:id/read", cfg.ConversationHandler.MarkRead)
			protected.POST("/conversations/:id/mute", cfg.ConversationHandler.SetMuted)
			protected.POST("/conversations/:id/archive", cfg.ConversationHandler.SetArchived)
			protected.POST("/conversations/:id/callable", cfg.ConversationHandler.SetCallable)
		}

		if cfg.CallHandler != nil {
			protected.POST("/conversations/:id/call/initiate", cfg.CallHandler.Initiate)
			protected.POST("/conversations/:id/call/accept", cfg.CallHandler.Accept)
			protected.POST("/conversations/:id/call/decline", cfg.CallHandler.Decline)
			protected.POST("/conversations/:id/call/cancel", cfg.CallHandler.Cancel)
			protected.POST("/conversations/:id/call/timeout", cfg.CallHandler.Timeout)
			protected.POST("/conversations/:id/call/hangup", cfg.CallHandler.Hangup)
		}

		if cfg.DiscoveryHandler != nil {
			protected.GET("/discovery/dating", cfg.DiscoveryHandler.DatingCandidates)
			protected.GET("/discovery/social", cfg.DiscoveryHandler.SocialSearch)
			protected.GET("/discovery/posts", cfg.DiscoveryHandler.NearbyPosts)
			protected.GET("/discovery/nearby-profiles", cfg.DiscoveryHandler.NearbyProfiles)
		}

		if cfg.PostHandler != nil {
			protected.POST("/posts", cfg.PostHandler.Create)
			protected.GET("/posts", cfg.PostHandler.ListMine)
			protected.DELETE("/posts/:id", cfg.PostHandler.Delete)
		}
	}

	return r
}
