package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type AccountTokenRepo interface {
	Create(dbc dbctx.Context, rows []*types.AccountToken) ([]*types.AccountToken, error)
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.AccountToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.AccountToken, error)
	DeleteByAccountID(dbc dbctx.Context, accountID uuid.UUID) error
	DeleteByAccessToken(dbc dbctx.Context, accessToken string) error
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type accountTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountTokenRepo(db *gorm.DB, log *logger.Logger) AccountTokenRepo {
	return &accountTokenRepo{db: db, log: log.With("repo", "AccountTokenRepo")}
}

func (r *accountTokenRepo) Create(dbc dbctx.Context, rows []*types.AccountToken) ([]*types.AccountToken, error) {
	if len(rows) == 0 {
		return []*types.AccountToken{}, nil
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

func (r *accountTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.AccountToken, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("missing access_token")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.AccountToken
	if err := txx.WithContext(dbc.Ctx).
		Where("access_token = ?", accessToken).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.AccountToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("missing refresh_token")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.AccountToken
	if err := txx.WithContext(dbc.Ctx).
		Where("refresh_token = ?", refreshToken).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountTokenRepo) DeleteByAccountID(dbc dbctx.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return fmt.Errorf("missing account_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("account_id = ?", accountID).
		Delete(&types.AccountToken{}).Error
}

func (r *accountTokenRepo) DeleteByAccessToken(dbc dbctx.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("missing access_token")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("access_token = ?", accessToken).
		Delete(&types.AccountToken{}).Error
}

func (r *accountTokenRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("expires_at < ?", now).
		Delete(&types.AccountToken{})
	return res.RowsAffected, res.Error
}
