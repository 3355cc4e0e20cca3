package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/ctxutil"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type DecideResult struct {
	Edge           *types.InteractionEdge `json:"edge"`
	Matched        bool                   `json:"matched"`
	ConversationID *uuid.UUID             `json:"conversation_id,omitempty"`
}

type InteractionCounters struct {
	UnseenLikes   int64 `json:"unseen_likes"`
	UnseenMatches int64 `json:"unseen_matches"`
}

// InteractionService owns the directed like/pass ledger. A match is never
// written anywhere; it is derived from the two directed edges on read.
type InteractionService interface {
	Decide(ctx context.Context, targetID uuid.UUID, kind string) (*DecideResult, error)
	LikesSent(ctx context.Context, limit int) ([]*types.InteractionEdge, error)
	LikesReceived(ctx context.Context, limit int) ([]*types.InteractionEdge, error)
	MarkLikesSeen(ctx context.Context) error
	Matches(ctx context.Context) ([]*types.Profile, error)
	Counters(ctx context.Context) (*InteractionCounters, error)
}

type interactionService struct {
	db           *gorm.DB
	log          *logger.Logger
	edgeRepo     repos.EdgeRepo
	profileRepo  repos.ProfileRepo
	gate         GateService
	conversation ConversationService
	notifier     Notifier
}

func NewInteractionService(db *gorm.DB, log *logger.Logger, edgeRepo repos.EdgeRepo, profileRepo repos.ProfileRepo, gate GateService, conversation ConversationService, notifier Notifier) InteractionService {
	return &interactionService{
		db:           db,
		log:          log.With("service", "InteractionService"),
		edgeRepo:     edgeRepo,
		profileRepo:  profileRepo,
		gate:         gate,
		conversation: conversation,
		notifier:     notifier,
	}
}

func (is *interactionService) Decide(ctx context.Context, targetID uuid.UUID, kind string) (*DecideResult, error) {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	if kind != types.EdgeKindLike && kind != types.EdgeKindPass {
		return nil, apierr.BadRequest("invalid_kind", fmt.Errorf("unknown decision kind %q", kind))
	}

	var result DecideResult
	if err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := is.gate.CheckPair(dbc, actorID, targetID); err != nil {
			return err
		}
		if _, err := is.profileRepo.GetByID(dbc, targetID); err != nil {
			return apierr.NotFound("profile_not_found", err)
		}
		edge, err := is.edgeRepo.Upsert(dbc, actorID, targetID, kind)
		if err != nil {
			return apierr.Internal("edge_write_failed", err)
		}
		result.Edge = edge
		if kind == types.EdgeKindLike {
			reverse, err := is.edgeRepo.Get(dbc, targetID, actorID)
			if err != nil {
				return apierr.Internal("edge_read_failed", err)
			}
			result.Matched = reverse != nil && reverse.IsLike()
		}
		// A match forces the pair's conversation to ACCEPTED in the same
		// transaction, even before either side has sent a message.
		if result.Matched && is.conversation != nil {
			conv, err := is.conversation.AcceptOnMatch(dbc, actorID, targetID)
			if err != nil {
				return err
			}
			result.ConversationID = &conv.ID
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if is.notifier != nil && kind == types.EdgeKindLike {
		event := EventLikeReceived
		if result.Matched {
			event = EventMatch
		}
		is.notifier.Dispatch(ctx, Notification{
			Event:     event,
			ProfileID: targetID,
			ActorID:   actorID,
		})
		if result.Matched {
			is.notifier.Dispatch(ctx, Notification{
				Event:     EventMatch,
				ProfileID: actorID,
				ActorID:   targetID,
			})
		}
	}
	return &result, nil
}

func (is *interactionService) LikesSent(ctx context.Context, limit int) ([]*types.InteractionEdge, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	edges, err := is.edgeRepo.ListLikesSent(dbc, profileID, limit)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	return edges, nil
}

func (is *interactionService) LikesReceived(ctx context.Context, limit int) ([]*types.InteractionEdge, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	edges, err := is.edgeRepo.ListLikesReceived(dbc, profileID, limit)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	return edges, nil
}

func (is *interactionService) MarkLikesSeen(ctx context.Context) error {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := is.edgeRepo.MarkLikesSeen(dbc, profileID, time.Now().UTC()); err != nil {
		return apierr.Internal("edge_write_failed", err)
	}
	return nil
}

func (is *interactionService) Matches(ctx context.Context) ([]*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := is.edgeRepo.ListMutualLikeIDs(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	rows, err := is.profileRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.Internal("profile_lookup_failed", err)
	}
	// Preserve the recency order of the id list.
	byID := make(map[uuid.UUID]*types.Profile, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]*types.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (is *interactionService) Counters(ctx context.Context) (*InteractionCounters, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	likes, err := is.edgeRepo.CountUnseenLikesReceived(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	matches, err := is.edgeRepo.CountUnseenMatches(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	return &InteractionCounters{UnseenLikes: likes, UnseenMatches: matches}, nil
}

func requireProfile(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.ProfileID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", fmt.Errorf("profile not set in request data"))
	}
	return rd.ProfileID, nil
}
