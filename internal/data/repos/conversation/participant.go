package conversation

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

type ParticipantRepo interface {
	CreatePair(dbc dbctx.Context, conversationID, profileA, profileB uuid.UUID) error
	Get(dbc dbctx.Context, conversationID, profileID uuid.UUID) (*types.ConversationParticipant, error)
	ListForProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.ConversationParticipant, error)
	UpdateFields(dbc dbctx.Context, conversationID, profileID uuid.UUID, updates map[string]interface{}) error
}

type participantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipantRepo(db *gorm.DB, log *logger.Logger) ParticipantRepo {
	return &participantRepo{db: db, log: log.With("repo", "ParticipantRepo")}
}

func (r *participantRepo) CreatePair(dbc dbctx.Context, conversationID, profileA, profileB uuid.UUID) error {
	if conversationID == uuid.Nil || profileA == uuid.Nil || profileB == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	rows := []*types.ConversationParticipant{
		{ID: uuid.New(), ConversationID: conversationID, ProfileID: profileA},
		{ID: uuid.New(), ConversationID: conversationID, ProfileID: profileB},
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "profile_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *participantRepo) Get(dbc dbctx.Context, conversationID, profileID uuid.UUID) (*types.ConversationParticipant, error) {
	if conversationID == uuid.Nil || profileID == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ConversationParticipant
	err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ? AND profile_id = ?", conversationID, profileID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *participantRepo) ListForProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.ConversationParticipant, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ConversationParticipant
	if err := txx.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *participantRepo) UpdateFields(dbc dbctx.Context, conversationID, profileID uuid.UUID, updates map[string]interface{}) error {
	if conversationID == uuid.Nil || profileID == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ConversationParticipant{}).
		Where("conversation_id = ? AND profile_id = ?", conversationID, profileID).
		Updates(updates).Error
}
