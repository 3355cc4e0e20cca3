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

type TagRepo interface {
	ReplaceForProfile(dbc dbctx.Context, profileID uuid.UUID, tags []string) error
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]string, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, log *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: log.With("repo", "TagRepo")}
}

func (r *tagRepo) ReplaceForProfile(dbc dbctx.Context, profileID uuid.UUID, tags []string) error {
	if profileID == uuid.Nil {
		return fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Delete(&types.ProfileTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]*types.ProfileTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, &types.ProfileTag{
			ID:        uuid.New(),
			ProfileID: profileID,
			Tag:       t,
		})
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "tag"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *tagRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]string, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []string
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ProfileTag{}).
		Where("profile_id = ?", profileID).
		Order("tag ASC").
		Pluck("tag", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
