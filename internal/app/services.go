package app

import (
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/platform/mediastore"
	"github.com/velora-app/velora-backend/internal/realtime"
	"github.com/velora-app/velora-backend/internal/realtime/bus"
	"github.com/velora-app/velora-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Avatar        services.AvatarService
	Profile       services.ProfileService
	Gate          services.GateService
	Compatibility services.CompatibilityService
	Interaction   services.InteractionService
	Conversation  services.ConversationService
	Call          services.CallService
	Discovery     services.DiscoveryService
	Post          services.PostService
	Notifier      services.Notifier
	Localizer     services.Localizer
}

// wireServices builds the service graph. When a redis bus is passed,
// notifications fan out through it so every instance's hub sees them;
// otherwise they go straight to the local hub.
func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	sseHub *realtime.SSEHub,
	sseBus bus.Bus,
	media mediastore.Store,
) (Services, error) {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter
	if sseBus != nil {
		emitter = &services.RedisEmitter{Bus: sseBus}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}
	notifier := services.NewNotifier(log, emitter)
	localizer := services.NewLocalizer(log)

	avatarService, err := services.NewAvatarService(db, log, reposet.Profile, media)
	if err != nil {
		return Services{}, err
	}

	gate := services.NewGateService(db, log, reposet.Block)
	authService := services.NewAuthService(
		db, log,
		reposet.Account, reposet.AccountToken, reposet.Profile,
		avatarService,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	profileService := services.NewProfileService(
		db, log,
		reposet.Profile, reposet.Block, reposet.Tag, reposet.SearchFilter,
		gate, avatarService,
	)
	compatibilityService := services.NewCompatibilityService(db, log, reposet.Profile, gate)
	conversationService := services.NewConversationService(
		db, log,
		reposet.Conversation, reposet.Participant, reposet.Message, reposet.Edge,
		gate, notifier, localizer, cfg.WelcomeProfileID,
	)
	interactionService := services.NewInteractionService(db, log, reposet.Edge, reposet.Profile, gate, conversationService, notifier)
	callService := services.NewCallService(
		db, log,
		reposet.Conversation, reposet.Participant, reposet.Message,
		gate, notifier,
	)
	discoveryService := services.NewDiscoveryService(
		db, log,
		reposet.Profile, reposet.Discovery, reposet.Edge, reposet.SearchFilter, reposet.Post,
	)
	postService := services.NewPostService(db, log, reposet.Post)

	return Services{
		Auth:          authService,
		Avatar:        avatarService,
		Profile:       profileService,
		Gate:          gate,
		Compatibility: compatibilityService,
		Interaction:   interactionService,
		Conversation:  conversationService,
		Call:          callService,
		Discovery:     discoveryService,
		Post:          postService,
		Notifier:      notifier,
		Localizer:     localizer,
	}, nil
}
