package profile

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type AccountRepo interface {
	Create(dbc dbctx.Context, rows []*types.Account) ([]*types.Account, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Account, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Account, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	UpdateLocale(dbc dbctx.Context, id uuid.UUID, locale string) error
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, log *logger.Logger) AccountRepo {
	return &accountRepo{db: db, log: log.With("repo", "AccountRepo")}
}

func (r *accountRepo) Create(dbc dbctx.Context, rows []*types.Account) ([]*types.Account, error) {
	if len(rows) == 0 {
		return []*types.Account{}, nil
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

func (r *accountRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Account, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing account_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Account
	if err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Account, error) {
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Account
	if err := txx.WithContext(dbc.Ctx).
		Where("email = ?", email).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Account{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepo) UpdateLocale(dbc dbctx.Context, id uuid.UUID, locale string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing account_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Account{}).
		Where("id = ?", id).
		Update("locale", locale).Error
}
