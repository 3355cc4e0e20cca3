package profile

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type BlockRepo interface {
	Create(dbc dbctx.Context, blockerID, blockedID uuid.UUID) error
	Delete(dbc dbctx.Context, blockerID, blockedID uuid.UUID) error
	// PairBlocked reports whether either side has blocked the other.
	PairBlocked(dbc dbctx.Context, a, b uuid.UUID) (bool, error)
	ListBlockedIDs(dbc dbctx.Context, blockerID uuid.UUID) ([]uuid.UUID, error)
}

type blockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockRepo(db *gorm.DB, log *logger.Logger) BlockRepo {
	return &blockRepo{db: db, log: log.With("repo", "BlockRepo")}
}

func (r *blockRepo) Create(dbc dbctx.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == uuid.Nil || blockedID == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.ProfileBlock{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *blockRepo) Delete(dbc dbctx.Context, blockerID, blockedID uuid.UUID) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&types.ProfileBlock{}).Error
}

func (r *blockRepo) PairBlocked(dbc dbctx.Context, a, b uuid.UUID) (bool, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return false, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ProfileBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blockRepo) ListBlockedIDs(dbc dbctx.Context, blockerID uuid.UUID) ([]uuid.UUID, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []uuid.UUID
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ProfileBlock{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
