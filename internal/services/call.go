package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// CallService is the signaling overlay on top of a conversation. The call
// state lives on the conversation row; ring timeout is owned by the client,
// which reports it through Timeout. Decline, Cancel and Timeout converge on
// the same transition so racing enders produce exactly one missed-call
// marker.
type CallService interface {
	Initiate(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error)
	Accept(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error)
	Decline(ctx context.Context, conversationID uuid.UUID) error
	Cancel(ctx context.Context, conversationID uuid.UUID) error
	Timeout(ctx context.Context, conversationID uuid.UUID) error
	Hangup(ctx context.Context, conversationID uuid.UUID) error
}

type callService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	participantRepo  repos.ParticipantRepo
	messageRepo      repos.MessageRepo
	gate             GateService
	notifier         Notifier
}

func NewCallService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	participantRepo repos.ParticipantRepo,
	messageRepo repos.MessageRepo,
	gate GateService,
	notifier Notifier,
) CallService {
	return &callService{
		db:               db,
		log:              log.With("service", "CallService"),
		conversationRepo: conversationRepo,
		participantRepo:  participantRepo,
		messageRepo:      messageRepo,
		gate:             gate,
		notifier:         notifier,
	}
}

func (cls *callService) Initiate(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error) {
	callerID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}

	var conv *types.Conversation
	var calleeID uuid.UUID
	if err := cls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		locked, err := cls.lockParticipantConversation(dbc, conversationID, callerID)
		if err != nil {
			return err
		}
		if locked.Status != types.ConversationAccepted {
			return apierr.PolicyViolation("not_callable", fmt.Errorf("conversation is not accepted"))
		}
		if locked.CallState != types.CallStateIdle {
			return apierr.PolicyViolation("call_in_progress", fmt.Errorf("a call is already in progress"))
		}

		// A block placed after acceptance leaves the row ACCEPTED, so the
		// pair is re-gated here like on every send.
		callee, _ := locked.CounterpartOf(callerID)
		if err := cls.gate.CheckPair(dbc, callerID, callee); err != nil {
			return err
		}
		part, err := cls.participantRepo.Get(dbc, locked.ID, callee)
		if err != nil {
			return apierr.Internal("participant_read_failed", err)
		}
		if part == nil || !part.IsCallable {
			return apierr.PolicyViolation("not_callable", fmt.Errorf("counterpart does not accept calls"))
		}

		now := time.Now().UTC()
		if err := cls.conversationRepo.UpdateCallState(dbc, locked.ID, types.CallStateCalling, &callerID, &now); err != nil {
			return apierr.Internal("call_write_failed", err)
		}
		locked.CallState = types.CallStateCalling
		locked.CallerID = &callerID
		locked.CallStartedAt = &now
		conv = locked
		calleeID = callee
		return nil
	}); err != nil {
		return nil, err
	}

	if cls.notifier != nil {
		cls.notifier.Dispatch(ctx, Notification{
			Event:          EventCallRing,
			ProfileID:      calleeID,
			ActorID:        callerID,
			ConversationID: conv.ID,
		})
	}
	return conv, nil
}

func (cls *callService) Accept(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error) {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}

	var conv *types.Conversation
	var callerID uuid.UUID
	if err := cls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		locked, err := cls.lockParticipantConversation(dbc, conversationID, actorID)
		if err != nil {
			return err
		}
		if locked.CallState != types.CallStateCalling || locked.CallerID == nil {
			return apierr.PolicyViolation("no_pending_call", fmt.Errorf("no call to accept"))
		}
		if *locked.CallerID == actorID {
			return apierr.BadRequest("self_interaction", fmt.Errorf("caller cannot accept its own call"))
		}

		now := time.Now().UTC()
		if err := cls.conversationRepo.UpdateCallState(dbc, locked.ID, types.CallStateActive, locked.CallerID, &now); err != nil {
			return apierr.Internal("call_write_failed", err)
		}
		callerID = *locked.CallerID
		locked.CallState = types.CallStateActive
		locked.CallStartedAt = &now
		conv = locked
		return nil
	}); err != nil {
		return nil, err
	}

	if cls.notifier != nil {
		cls.notifier.Dispatch(ctx, Notification{
			Event:          EventCallAccepted,
			ProfileID:      callerID,
			ActorID:        actorID,
			ConversationID: conv.ID,
		})
	}
	return conv, nil
}

func (cls *callService) Decline(ctx context.Context, conversationID uuid.UUID) error {
	return cls.endRinging(ctx, conversationID)
}

func (cls *callService) Cancel(ctx context.Context, conversationID uuid.UUID) error {
	return cls.endRinging(ctx, conversationID)
}

func (cls *callService) Timeout(ctx context.Context, conversationID uuid.UUID) error {
	return cls.endRinging(ctx, conversationID)
}

// endRinging resolves an unanswered ring. Already-idle conversations are a
// no-op so whichever side loses the race still gets a success.
func (cls *callService) endRinging(ctx context.Context, conversationID uuid.UUID) error {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return err
	}

	var missed *types.Message
	var counterpartID uuid.UUID
	if err := cls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		locked, err := cls.lockParticipantConversation(dbc, conversationID, actorID)
		if err != nil {
			return err
		}
		if locked.CallState == types.CallStateIdle {
			return nil
		}
		if locked.CallState != types.CallStateCalling || locked.CallerID == nil {
			return apierr.PolicyViolation("no_pending_call", fmt.Errorf("no ringing call to end"))
		}

		// The missed-call marker is always authored by the caller.
		msg := &types.Message{
			ID:             uuid.New(),
			ConversationID: locked.ID,
			SenderID:       *locked.CallerID,
			Content:        "",
			MessageType:    types.MessageTypeMissedCall,
		}
		if _, err := cls.messageRepo.Create(dbc, []*types.Message{msg}); err != nil {
			return apierr.Internal("message_write_failed", err)
		}
		if err := cls.conversationRepo.UpdateCallState(dbc, locked.ID, types.CallStateIdle, nil, nil); err != nil {
			return apierr.Internal("call_write_failed", err)
		}
		if err := cls.conversationRepo.Touch(dbc, locked.ID, time.Now().UTC()); err != nil {
			return apierr.Internal("conversation_write_failed", err)
		}
		missed = msg
		counterpartID, _ = locked.CounterpartOf(actorID)
		return nil
	}); err != nil {
		return err
	}

	if cls.notifier != nil && missed != nil {
		cls.notifier.Dispatch(ctx, Notification{
			Event:          EventCallMissed,
			ProfileID:      counterpartID,
			ActorID:        actorID,
			ConversationID: conversationID,
			Data:           map[string]any{"message": missed},
		})
	}
	return nil
}

func (cls *callService) Hangup(ctx context.Context, conversationID uuid.UUID) error {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return err
	}

	var ended bool
	var counterpartID uuid.UUID
	if err := cls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		locked, err := cls.lockParticipantConversation(dbc, conversationID, actorID)
		if err != nil {
			return err
		}
		switch locked.CallState {
		case types.CallStateIdle:
			return nil
		case types.CallStateCalling:
			return apierr.PolicyViolation("no_active_call", fmt.Errorf("call has not been accepted yet"))
		}
		if err := cls.conversationRepo.UpdateCallState(dbc, locked.ID, types.CallStateIdle, nil, nil); err != nil {
			return apierr.Internal("call_write_failed", err)
		}
		ended = true
		counterpartID, _ = locked.CounterpartOf(actorID)
		return nil
	}); err != nil {
		return err
	}

	if cls.notifier != nil && ended {
		cls.notifier.Dispatch(ctx, Notification{
			Event:          EventCallEnded,
			ProfileID:      counterpartID,
			ActorID:        actorID,
			ConversationID: conversationID,
		})
	}
	return nil
}

func (cls *callService) lockParticipantConversation(dbc dbctx.Context, conversationID, profileID uuid.UUID) (*types.Conversation, error) {
	conv, err := cls.conversationRepo.LockByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal("conversation_read_failed", err)
	}
	if conv == nil || !conv.HasParticipant(profileID) {
		return nil, apierr.NotFound("conversation_not_found", fmt.Errorf("conversation not found"))
	}
	return conv, nil
}
