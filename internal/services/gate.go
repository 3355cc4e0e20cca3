package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// GateService is the single choke point every pair interaction passes
// through before it can touch state. Blocks win over everything else.
type GateService interface {
	// CheckPair returns a typed error when actor and target must not
	// interact: self-interaction or a block in either direction.
	CheckPair(dbc dbctx.Context, actorID, targetID uuid.UUID) error
}

type gateService struct {
	db        *gorm.DB
	log       *logger.Logger
	blockRepo repos.BlockRepo
}

func NewGateService(db *gorm.DB, log *logger.Logger, blockRepo repos.BlockRepo) GateService {
	return &gateService{
		db:        db,
		log:       log.With("service", "GateService"),
		blockRepo: blockRepo,
	}
}

func (gs *gateService) CheckPair(dbc dbctx.Context, actorID, targetID uuid.UUID) error {
	if actorID == uuid.Nil || targetID == uuid.Nil {
		return apierr.BadRequest("missing_profile", fmt.Errorf("missing profile id"))
	}
	if actorID == targetID {
		return apierr.BadRequest("self_interaction", fmt.Errorf("profile %s cannot interact with itself", actorID))
	}
	blocked, err := gs.blockRepo.PairBlocked(dbc, actorID, targetID)
	if err != nil {
		return apierr.Internal("block_lookup_failed", err)
	}
	if blocked {
		return apierr.Forbidden("blocked_pair", fmt.Errorf("pair is blocked"))
	}
	return nil
}
