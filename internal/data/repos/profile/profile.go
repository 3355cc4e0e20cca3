package profile

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, rows []*types.Profile) ([]*types.Profile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	GetByAccountID(dbc dbctx.Context, accountID uuid.UUID) (*types.Profile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateAvatarFields(dbc dbctx.Context, id uuid.UUID, mediaKey, avatarURL string) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: log.With("repo", "ProfileRepo")}
}

func (r *profileRepo) Create(dbc dbctx.Context, rows []*types.Profile) ([]*types.Profile, error) {
	if len(rows) == 0 {
		return []*types.Profile{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Profile
	if err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	var out []*types.Profile
	if len(ids) == 0 {
		return out, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *profileRepo) GetByAccountID(dbc dbctx.Context, accountID uuid.UUID) (*types.Profile, error) {
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("missing account_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Profile
	if err := txx.WithContext(dbc.Ctx).
		Where("account_id = ?", accountID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *profileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *profileRepo) UpdateAvatarFields(dbc dbctx.Context, id uuid.UUID, mediaKey, avatarURL string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"avatar_media_key": mediaKey,
			"avatar_url":       avatarURL,
		}).Error
}
