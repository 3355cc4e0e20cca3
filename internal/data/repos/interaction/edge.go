package interaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type EdgeRepo interface {
	// Upsert writes the directed edge, replacing any previous kind for the
	// same (from, to). A kind change resets the seen markers.
	Upsert(dbc dbctx.Context, fromID, toID uuid.UUID, kind string) (*types.InteractionEdge, error)
	Get(dbc dbctx.Context, fromID, toID uuid.UUID) (*types.InteractionEdge, error)
	ListLikesReceived(dbc dbctx.Context, toID uuid.UUID, limit int) ([]*types.InteractionEdge, error)
	ListLikesSent(dbc dbctx.Context, fromID uuid.UUID, limit int) ([]*types.InteractionEdge, error)
	CountUnseenLikesReceived(dbc dbctx.Context, toID uuid.UUID) (int64, error)
	MarkLikesSeen(dbc dbctx.Context, toID uuid.UUID, now time.Time) error
	// ListMutualLikeIDs returns counterpart ids where both directions are LIKE.
	ListMutualLikeIDs(dbc dbctx.Context, fromID uuid.UUID) ([]uuid.UUID, error)
	CountUnseenMatches(dbc dbctx.Context, fromID uuid.UUID) (int64, error)
	MarkMatchSeen(dbc dbctx.Context, fromID, toID uuid.UUID, now time.Time) error
	ListDecidedIDs(dbc dbctx.Context, fromID uuid.UUID) ([]uuid.UUID, error)
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, log *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: log.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) Upsert(dbc dbctx.Context, fromID, toID uuid.UUID, kind string) (*types.InteractionEdge, error) {
	if fromID == uuid.Nil || toID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if kind != types.EdgeKindLike && kind != types.EdgeKindPass {
		return nil, fmt.Errorf("unknown edge kind %q", kind)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.InteractionEdge{
		ID:            uuid.New(),
		FromProfileID: fromID,
		ToProfileID:   toID,
		Kind:          kind,
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "from_profile_id"}, {Name: "to_profile_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"kind":          kind,
				"seen_at":       nil,
				"match_seen_at": nil,
				"updated_at":    time.Now().UTC(),
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, fromID, toID)
}

func (r *edgeRepo) Get(dbc dbctx.Context, fromID, toID uuid.UUID) (*types.InteractionEdge, error) {
	if fromID == uuid.Nil || toID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.InteractionEdge
	err := txx.WithContext(dbc.Ctx).
		Where("from_profile_id = ? AND to_profile_id = ?", fromID, toID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *edgeRepo) ListLikesSent(dbc dbctx.Context, fromID uuid.UUID, limit int) ([]*types.InteractionEdge, error) {
	if fromID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.InteractionEdge
	if err := txx.WithContext(dbc.Ctx).
		Where("from_profile_id = ? AND kind = ?", fromID, types.EdgeKindLike).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) ListLikesReceived(dbc dbctx.Context, toID uuid.UUID, limit int) ([]*types.InteractionEdge, error) {
	if toID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.InteractionEdge
	if err := txx.WithContext(dbc.Ctx).
		Where("to_profile_id = ? AND kind = ?", toID, types.EdgeKindLike).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) CountUnseenLikesReceived(dbc dbctx.Context, toID uuid.UUID) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.InteractionEdge{}).
		Where("to_profile_id = ? AND kind = ? AND seen_at IS NULL", toID, types.EdgeKindLike).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *edgeRepo) MarkLikesSeen(dbc dbctx.Context, toID uuid.UUID, now time.Time) error {
	if toID == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.InteractionEdge{}).
		Where("to_profile_id = ? AND kind = ? AND seen_at IS NULL", toID, types.EdgeKindLike).
		Update("seen_at", now).Error
}

func (r *edgeRepo) ListMutualLikeIDs(dbc dbctx.Context, fromID uuid.UUID) ([]uuid.UUID, error) {
	if fromID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []uuid.UUID
	if err := txx.WithContext(dbc.Ctx).
		Raw(`
			SELECT e1.to_profile_id
			FROM interaction_edge e1
			JOIN interaction_edge e2
			  ON e2.from_profile_id = e1.to_profile_id
			 AND e2.to_profile_id = e1.from_profile_id
			WHERE e1.from_profile_id = ?
			  AND e1.kind = 'LIKE'
			  AND e2.kind = 'LIKE'
			ORDER BY GREATEST(e1.updated_at, e2.updated_at) DESC
		`, fromID).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) CountUnseenMatches(dbc dbctx.Context, fromID uuid.UUID) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Raw(`
			SELECT COUNT(*)
			FROM interaction_edge e1
			JOIN interaction_edge e2
			  ON e2.from_profile_id = e1.to_profile_id
			 AND e2.to_profile_id = e1.from_profile_id
			WHERE e1.from_profile_id = ?
			  AND e1.kind = 'LIKE'
			  AND e2.kind = 'LIKE'
			  AND e1.match_seen_at IS NULL
		`, fromID).
		Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *edgeRepo) MarkMatchSeen(dbc dbctx.Context, fromID, toID uuid.UUID, now time.Time) error {
	if fromID == uuid.Nil || toID == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.InteractionEdge{}).
		Where("from_profile_id = ? AND to_profile_id = ? AND match_seen_at IS NULL", fromID, toID).
		Update("match_seen_at", now).Error
}

func (r *edgeRepo) ListDecidedIDs(dbc dbctx.Context, fromID uuid.UUID) ([]uuid.UUID, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []uuid.UUID
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.InteractionEdge{}).
		Where("from_profile_id = ?", fromID).
		Pluck("to_profile_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
