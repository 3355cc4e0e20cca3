package profile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type SearchFilterRepo interface {
	Upsert(dbc dbctx.Context, row *types.SearchFilter) (*types.SearchFilter, error)
	// GetByProfile returns (nil, nil) when the viewer has no stored filter.
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.SearchFilter, error)
	DeleteByProfile(dbc dbctx.Context, profileID uuid.UUID) error
}

type searchFilterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSearchFilterRepo(db *gorm.DB, log *logger.Logger) SearchFilterRepo {
	return &searchFilterRepo{db: db, log: log.With("repo", "SearchFilterRepo")}
}

func (r *searchFilterRepo) Upsert(dbc dbctx.Context, row *types.SearchFilter) (*types.SearchFilter, error) {
	if row == nil || row.ProfileID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"country", "tags", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *searchFilterRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.SearchFilter, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.SearchFilter
	err := txx.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *searchFilterRepo) DeleteByProfile(dbc dbctx.Context, profileID uuid.UUID) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Delete(&types.SearchFilter{}).Error
}
