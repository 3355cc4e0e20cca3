package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type AttachmentInput struct {
	FileKey         string   `json:"file_key"`
	MimeType        string   `json:"mime_type"`
	SizeBytes       int64    `json:"size_bytes"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

type MessageInput struct {
	Content     string           `json:"content"`
	MessageType string           `json:"message_type"`
	Attachment  *AttachmentInput `json:"attachment,omitempty"`
}

type SendResult struct {
	Conversation *types.Conversation `json:"conversation"`
	Message      *types.Message      `json:"message"`
	Accepted     bool                `json:"accepted"`
}

type ConversationView struct {
	Conversation *types.Conversation            `json:"conversation"`
	Participant  *types.ConversationParticipant `json:"participant"`
	LastMessage  *types.Message                 `json:"last_message,omitempty"`
	UnreadCount  int64                          `json:"unread_count"`
}

// ConversationService owns the reply-gated conversation state machine.
// One row exists per unordered pair; the initiator cannot send a second
// message until the counterpart has replied.
type ConversationService interface {
	SendMessage(ctx context.Context, targetProfileID uuid.UUID, in MessageInput) (*SendResult, error)
	// AcceptOnMatch forces the pair's conversation to ACCEPTED inside the
	// caller's transaction, creating the row if no message was ever sent.
	AcceptOnMatch(dbc dbctx.Context, actorID, counterpartID uuid.UUID) (*types.Conversation, error)
	// SendWelcomeMessage starts a conversation from the system welcome
	// profile with localized content. A no-op when none is configured.
	SendWelcomeMessage(ctx context.Context, targetProfileID uuid.UUID, locale string) error
	List(ctx context.Context, limit int) ([]*ConversationView, error)
	Messages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]*types.Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID) error
	SetMuted(ctx context.Context, conversationID uuid.UUID, muted bool) error
	SetArchived(ctx context.Context, conversationID uuid.UUID, archived bool) error
	SetCallable(ctx context.Context, conversationID uuid.UUID, callable bool) error
}

type conversationService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	participantRepo  repos.ParticipantRepo
	messageRepo      repos.MessageRepo
	edgeRepo         repos.EdgeRepo
	gate             GateService
	notifier         Notifier
	localizer        Localizer
	welcomeSenderID  uuid.UUID
}

func NewConversationService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	participantRepo repos.ParticipantRepo,
	messageRepo repos.MessageRepo,
	edgeRepo repos.EdgeRepo,
	gate GateService,
	notifier Notifier,
	localizer Localizer,
	welcomeSenderID uuid.UUID,
) ConversationService {
	return &conversationService{
		db:               db,
		log:              log.With("service", "ConversationService"),
		conversationRepo: conversationRepo,
		participantRepo:  participantRepo,
		messageRepo:      messageRepo,
		edgeRepo:         edgeRepo,
		gate:             gate,
		notifier:         notifier,
		localizer:        localizer,
		welcomeSenderID:  welcomeSenderID,
	}
}

// SanitizeText escapes HTML and normalizes newlines to <br /> tags.
// Non-text message types carry opaque content and bypass this entirely.
func SanitizeText(raw string) string {
	escaped := html.EscapeString(raw)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br />")
}

func (cs *conversationService) SendMessage(ctx context.Context, targetProfileID uuid.UUID, in MessageInput) (*SendResult, error) {
	senderID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	return cs.sendFrom(ctx, senderID, targetProfileID, in)
}

// SendWelcomeMessage follows the same send path as a user message; the
// welcome profile is a normal Profile row so the gate and reply rules
// apply to it unchanged.
func (cs *conversationService) SendWelcomeMessage(ctx context.Context, targetProfileID uuid.UUID, locale string) error {
	if cs.welcomeSenderID == uuid.Nil {
		return nil
	}
	if cs.welcomeSenderID == targetProfileID {
		return nil
	}
	content := "Welcome!"
	if cs.localizer != nil {
		content = cs.localizer.T(locale, "welcome.message")
	}
	_, err := cs.sendFrom(ctx, cs.welcomeSenderID, targetProfileID, MessageInput{Content: content})
	return err
}

func (cs *conversationService) sendFrom(ctx context.Context, senderID, targetProfileID uuid.UUID, in MessageInput) (*SendResult, error) {
	messageType := in.MessageType
	if messageType == "" {
		messageType = types.MessageTypeText
	}
	content := in.Content
	if messageType == types.MessageTypeText {
		content = SanitizeText(strings.TrimSpace(content))
		if content == "" {
			return nil, apierr.BadRequest("empty_message", fmt.Errorf("message content is empty"))
		}
	}
	if messageType == types.MessageTypeVoice && in.Attachment == nil {
		return nil, apierr.BadRequest("missing_attachment", fmt.Errorf("voice message requires an attachment"))
	}

	var result SendResult
	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := cs.gate.CheckPair(dbc, senderID, targetProfileID); err != nil {
			return err
		}

		conv, err := cs.lockOrCreate(dbc, senderID, targetProfileID)
		if err != nil {
			return err
		}

		if !conv.CanSend(senderID) {
			if conv.Status == types.ConversationBlocked {
				return apierr.Forbidden("blocked_pair", fmt.Errorf("conversation is blocked"))
			}
			return apierr.PolicyViolation("await_reply", fmt.Errorf("initiator must wait for a reply"))
		}

		accepted := false
		if conv.Status == types.ConversationInitiated && senderID != conv.InitiatorID {
			if err := cs.conversationRepo.UpdateStatus(dbc, conv.ID, types.ConversationAccepted); err != nil {
				return apierr.Internal("conversation_write_failed", err)
			}
			conv.Status = types.ConversationAccepted
			accepted = true
		}

		msg := &types.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			SenderID:       senderID,
			Content:        content,
			MessageType:    messageType,
		}
		if in.Attachment != nil {
			msg.Attachment = &types.MessageAttachment{
				ID:              uuid.New(),
				FileKey:         in.Attachment.FileKey,
				MimeType:        in.Attachment.MimeType,
				SizeBytes:       in.Attachment.SizeBytes,
				DurationSeconds: in.Attachment.DurationSeconds,
			}
		}
		if _, err := cs.messageRepo.Create(dbc, []*types.Message{msg}); err != nil {
			return apierr.Internal("message_write_failed", err)
		}
		if err := cs.conversationRepo.Touch(dbc, conv.ID, time.Now().UTC()); err != nil {
			return apierr.Internal("conversation_write_failed", err)
		}

		// Messaging a match acknowledges it; missing edges are fine.
		if err := cs.edgeRepo.MarkMatchSeen(dbc, senderID, targetProfileID, time.Now().UTC()); err != nil {
			cs.log.Warn("mark match seen failed", "error", err, "profile_id", senderID)
		}

		result.Conversation = conv
		result.Message = msg
		result.Accepted = accepted
		return nil
	}); err != nil {
		return nil, err
	}

	if cs.notifier != nil {
		notes := []Notification{{
			Event:          EventMessage,
			ProfileID:      targetProfileID,
			ActorID:        senderID,
			ConversationID: result.Conversation.ID,
			Data:           map[string]any{"message": result.Message},
		}}
		if result.Accepted {
			notes = append(notes, Notification{
				Event:          EventConversationAccepted,
				ProfileID:      result.Conversation.InitiatorID,
				ActorID:        senderID,
				ConversationID: result.Conversation.ID,
			})
		}
		cs.notifier.DispatchAll(ctx, notes...)
	}
	return &result, nil
}

// AcceptOnMatch runs inside the like transaction so the mutual LIKE and
// the ACCEPTED status commit or roll back together. With no prior
// message the row is created empty and already accepted.
func (cs *conversationService) AcceptOnMatch(dbc dbctx.Context, actorID, counterpartID uuid.UUID) (*types.Conversation, error) {
	conv, err := cs.lockOrCreate(dbc, actorID, counterpartID)
	if err != nil {
		return nil, err
	}
	if conv.Status != types.ConversationAccepted {
		if err := cs.conversationRepo.UpdateStatus(dbc, conv.ID, types.ConversationAccepted); err != nil {
			return nil, apierr.Internal("conversation_write_failed", err)
		}
		conv.Status = types.ConversationAccepted
	}
	return conv, nil
}

// lockOrCreate takes the conversation row lock for the pair, creating the
// row when absent. A duplicate-key error means a concurrent creator won;
// re-lock and continue on its row.
func (cs *conversationService) lockOrCreate(dbc dbctx.Context, senderID, targetID uuid.UUID) (*types.Conversation, error) {
	aID, bID := types.CanonicalPair(senderID, targetID)

	conv, err := cs.conversationRepo.LockByPair(dbc, aID, bID)
	if err != nil {
		return nil, apierr.Internal("conversation_read_failed", err)
	}
	if conv != nil {
		return conv, nil
	}

	created, err := cs.conversationRepo.Create(dbc, &types.Conversation{
		ID:          uuid.New(),
		ProfileAID:  aID,
		ProfileBID:  bID,
		Status:      types.ConversationInitiated,
		InitiatorID: senderID,
		CallState:   types.CallStateIdle,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			conv, lockErr := cs.conversationRepo.LockByPair(dbc, aID, bID)
			if lockErr != nil || conv == nil {
				return nil, apierr.Internal("conversation_read_failed", lockErr)
			}
			return conv, nil
		}
		return nil, apierr.Internal("conversation_write_failed", err)
	}
	if err := cs.participantRepo.CreatePair(dbc, created.ID, aID, bID); err != nil {
		return nil, apierr.Internal("participant_write_failed", err)
	}
	return created, nil
}

func (cs *conversationService) List(ctx context.Context, limit int) ([]*ConversationView, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	convs, err := cs.conversationRepo.ListForProfile(dbc, profileID, limit)
	if err != nil {
		return nil, apierr.Internal("conversation_read_failed", err)
	}
	out := make([]*ConversationView, 0, len(convs))
	for _, conv := range convs {
		view := &ConversationView{Conversation: conv}
		part, err := cs.participantRepo.Get(dbc, conv.ID, profileID)
		if err != nil {
			return nil, apierr.Internal("participant_read_failed", err)
		}
		view.Participant = part
		last, err := cs.messageRepo.GetLast(dbc, conv.ID)
		if err != nil {
			return nil, apierr.Internal("message_read_failed", err)
		}
		view.LastMessage = last
		var since *time.Time
		if part != nil {
			since = part.LastReadAt
		}
		unread, err := cs.messageRepo.CountSince(dbc, conv.ID, since, profileID)
		if err != nil {
			return nil, apierr.Internal("message_read_failed", err)
		}
		view.UnreadCount = unread
		out = append(out, view)
	}
	return out, nil
}

func (cs *conversationService) Messages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]*types.Message, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	conv, err := cs.requireParticipant(dbc, conversationID, profileID)
	if err != nil {
		return nil, err
	}
	msgs, err := cs.messageRepo.ListByConversation(dbc, conv.ID, before, limit)
	if err != nil {
		return nil, apierr.Internal("message_read_failed", err)
	}
	return msgs, nil
}

func (cs *conversationService) MarkRead(ctx context.Context, conversationID uuid.UUID) error {
	now := time.Now().UTC()
	return cs.updateParticipant(ctx, conversationID, map[string]interface{}{"last_read_at": now})
}

func (cs *conversationService) SetMuted(ctx context.Context, conversationID uuid.UUID, muted bool) error {
	return cs.updateParticipant(ctx, conversationID, map[string]interface{}{"is_muted": muted})
}

func (cs *conversationService) SetArchived(ctx context.Context, conversationID uuid.UUID, archived bool) error {
	return cs.updateParticipant(ctx, conversationID, map[string]interface{}{"is_archived": archived})
}

func (cs *conversationService) SetCallable(ctx context.Context, conversationID uuid.UUID, callable bool) error {
	return cs.updateParticipant(ctx, conversationID, map[string]interface{}{"is_callable": callable})
}

func (cs *conversationService) updateParticipant(ctx context.Context, conversationID uuid.UUID, updates map[string]interface{}) error {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := cs.requireParticipant(dbc, conversationID, profileID); err != nil {
		return err
	}
	if err := cs.participantRepo.UpdateFields(dbc, conversationID, profileID, updates); err != nil {
		return apierr.Internal("participant_write_failed", err)
	}
	return nil
}

func (cs *conversationService) requireParticipant(dbc dbctx.Context, conversationID, profileID uuid.UUID) (*types.Conversation, error) {
	conv, err := cs.conversationRepo.GetByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal("conversation_read_failed", err)
	}
	if conv == nil || !conv.HasParticipant(profileID) {
		return nil, apierr.NotFound("conversation_not_found", fmt.Errorf("conversation not found"))
	}
	return conv, nil
}
