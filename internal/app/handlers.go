package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/velora-app/velora-backend/internal/http"
	httpH "github.com/velora-app/velora-backend/internal/http/handlers"
	httpMW "github.com/velora-app/velora-backend/internal/http/middleware"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/platform/mediastore"
	"github.com/velora-app/velora-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Profile      *httpH.ProfileHandler
	Interaction  *httpH.InteractionHandler
	Conversation *httpH.ConversationHandler
	Call         *httpH.CallHandler
	Discovery    *httpH.DiscoveryHandler
	Post         *httpH.PostHandler
	Realtime     *httpH.RealtimeHandler
	Media        *httpH.MediaHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, sseHub *realtime.SSEHub, media mediastore.Store) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(log, serviceset.Auth, serviceset.Conversation),
		Profile:      httpH.NewProfileHandler(log, serviceset.Profile),
		Interaction:  httpH.NewInteractionHandler(serviceset.Interaction, serviceset.Compatibility),
		Conversation: httpH.NewConversationHandler(serviceset.Conversation),
		Call:         httpH.NewCallHandler(serviceset.Call),
		Discovery:    httpH.NewDiscoveryHandler(serviceset.Discovery),
		Post:         httpH.NewPostHandler(serviceset.Post),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
		Media:        httpH.NewMediaHandler(log, media),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouter(log *logger.Logger, handlerset Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:                 log,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlerset.Health,
		AuthHandler:         handlerset.Auth,
		ProfileHandler:      handlerset.Profile,
		InteractionHandler:  handlerset.Interaction,
		ConversationHandler: handlerset.Conversation,
		CallHandler:         handlerset.Call,
		DiscoveryHandler:    handlerset.Discovery,
		PostHandler:         handlerset.Post,
		RealtimeHandler:     handlerset.Realtime,
		MediaHandler:        handlerset.Media,
	})
}
