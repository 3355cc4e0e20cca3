package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	"github.com/velora-app/velora-backend/internal/data/repos/testutil"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/services"
)

func callServiceForTest(t *testing.T, tx *gorm.DB, log *logger.Logger) services.CallService {
	t.Helper()
	return services.NewCallService(
		tx, log,
		repos.NewConversationRepo(tx, log),
		repos.NewParticipantRepo(tx, log),
		repos.NewMessageRepo(tx, log),
		services.NewGateService(tx, log, repos.NewBlockRepo(tx, log)),
		nil,
	)
}

// acceptedConversation seeds a pair whose conversation already passed the
// reply gate, which is the precondition for calling.
func acceptedConversation(t *testing.T, ctx context.Context, tx *gorm.DB, aName, bName string) (*types.Profile, *types.Profile, *types.Conversation) {
	t.Helper()
	a := testutil.SeedProfile(t, ctx, tx, aName)
	b := testutil.SeedProfile(t, ctx, tx, bName)
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	if err := tx.Model(&types.Conversation{}).
		Where("id = ?", conv.ID).
		Update("status", types.ConversationAccepted).Error; err != nil {
		t.Fatalf("accept conversation: %v", err)
	}
	conv.Status = types.ConversationAccepted
	return a, b, conv
}

func TestCallLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := callServiceForTest(t, tx, log)
	ctx := context.Background()

	a, b, conv := acceptedConversation(t, ctx, tx, "call-a", "call-b")

	ringing, err := svc.Initiate(asProfile(a.ID), conv.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if ringing.CallState != types.CallStateCalling {
		t.Fatalf("call state = %q, want calling", ringing.CallState)
	}
	if ringing.CallerID == nil || *ringing.CallerID != a.ID {
		t.Fatalf("caller id = %v, want %s", ringing.CallerID, a.ID)
	}

	// only one call per conversation at a time
	_, err = svc.Initiate(asProfile(b.ID), conv.ID)
	if ae, ok := apierr.As(err); !ok || ae.Code != "call_in_progress" {
		t.Fatalf("second initiate = %v, want call_in_progress", err)
	}

	// the caller cannot accept their own call
	_, err = svc.Accept(asProfile(a.ID), conv.ID)
	if ae, ok := apierr.As(err); !ok || ae.Code != "self_interaction" {
		t.Fatalf("self accept = %v, want self_interaction", err)
	}

	active, err := svc.Accept(asProfile(b.ID), conv.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if active.CallState != types.CallStateActive {
		t.Fatalf("call state = %q, want active", active.CallState)
	}

	if err := svc.Hangup(asProfile(a.ID), conv.ID); err != nil {
		t.Fatalf("hangup: %v", err)
	}
	var after types.Conversation
	if err := tx.First(&after, "id = ?", conv.ID).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if after.CallState != types.CallStateIdle || after.CallerID != nil {
		t.Fatalf("call state after hangup = %q caller %v, want idle/nil", after.CallState, after.CallerID)
	}
}

func TestCallDeclineWritesMissedMessageOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := callServiceForTest(t, tx, log)
	ctx := context.Background()

	a, b, conv := acceptedConversation(t, ctx, tx, "missed-a", "missed-b")

	if _, err := svc.Initiate(asProfile(a.ID), conv.ID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := svc.Decline(asProfile(b.ID), conv.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	// losing side of the race converges on success
	if err := svc.Cancel(asProfile(a.ID), conv.ID); err != nil {
		t.Fatalf("cancel after decline: %v", err)
	}

	var missed []types.Message
	if err := tx.Where("conversation_id = ? AND message_type = ?", conv.ID, types.MessageTypeMissedCall).
		Find(&missed).Error; err != nil {
		t.Fatalf("load missed messages: %v", err)
	}
	if len(missed) != 1 {
		t.Fatalf("missed call messages = %d, want 1", len(missed))
	}
	if missed[0].SenderID != a.ID {
		t.Fatalf("missed message author = %s, want caller %s", missed[0].SenderID, a.ID)
	}
}

func TestCallRequiresAcceptedConversation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := callServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "notyet-a")
	b := testutil.SeedProfile(t, ctx, tx, "notyet-b")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)

	_, err := svc.Initiate(asProfile(a.ID), conv.ID)
	if ae, ok := apierr.As(err); !ok || ae.Code != "not_callable" {
		t.Fatalf("initiate on INITIATED conversation = %v, want not_callable", err)
	}

	err = svc.Hangup(asProfile(a.ID), conv.ID)
	if err != nil {
		t.Fatalf("hangup with no call should be a no-op, got %v", err)
	}
}

func TestCallInitiateBlockedPair(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := callServiceForTest(t, tx, log)
	ctx := context.Background()

	a, b, conv := acceptedConversation(t, ctx, tx, "ring-a", "ring-b")

	// a block placed after acceptance leaves the conversation ACCEPTED
	if err := tx.Create(&types.ProfileBlock{
		ID:        uuid.New(),
		BlockerID: b.ID,
		BlockedID: a.ID,
	}).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}

	_, err := svc.Initiate(asProfile(a.ID), conv.ID)
	if ae, ok := apierr.As(err); !ok || ae.Code != "blocked_pair" {
		t.Fatalf("initiate across block = %v, want blocked_pair", err)
	}

	var after types.Conversation
	if err := tx.First(&after, "id = ?", conv.ID).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if after.CallState != types.CallStateIdle {
		t.Fatalf("call state = %q, want idle", after.CallState)
	}
}
