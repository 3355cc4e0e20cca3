package conversation

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

type ConversationRepo interface {
	Create(dbc dbctx.Context, row *types.Conversation) (*types.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	// GetByPair expects the canonical order; returns (nil, nil) when absent.
	GetByPair(dbc dbctx.Context, aID, bID uuid.UUID) (*types.Conversation, error)
	// LockByID takes a row lock; callers must hold a transaction.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	LockByPair(dbc dbctx.Context, aID, bID uuid.UUID) (*types.Conversation, error)
	ListForProfile(dbc dbctx.Context, profileID uuid.UUID, limit int) ([]*types.Conversation, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
	UpdateCallState(dbc dbctx.Context, id uuid.UUID, callState string, callerID *uuid.UUID, startedAt *time.Time) error
	Touch(dbc dbctx.Context, id uuid.UUID, now time.Time) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, row *types.Conversation) (*types.Conversation, error) {
	if row == nil {
		return nil, fmt.Errorf("missing conversation")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Conversation
	err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) GetByPair(dbc dbctx.Context, aID, bID uuid.UUID) (*types.Conversation, error) {
	if aID == uuid.Nil || bID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Conversation
	err := txx.WithContext(dbc.Ctx).
		Where("profile_a_id = ? AND profile_b_id = ?", aID, bID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if dbc.Tx == nil {
		return nil, fmt.Errorf("row lock requires a transaction")
	}
	var out types.Conversation
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) LockByPair(dbc dbctx.Context, aID, bID uuid.UUID) (*types.Conversation, error) {
	if dbc.Tx == nil {
		return nil, fmt.Errorf("row lock requires a transaction")
	}
	var out types.Conversation
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("profile_a_id = ? AND profile_b_id = ?", aID, bID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) ListForProfile(dbc dbctx.Context, profileID uuid.UUID, limit int) ([]*types.Conversation, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("profile_a_id = ? OR profile_b_id = ?", profileID, profileID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *conversationRepo) UpdateCallState(dbc dbctx.Context, id uuid.UUID, callState string, callerID *uuid.UUID, startedAt *time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"call_state":      callState,
			"caller_id":       callerID,
			"call_started_at": startedAt,
		}).Error
}

func (r *conversationRepo) Touch(dbc dbctx.Context, id uuid.UUID, now time.Time) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", now).Error
}
