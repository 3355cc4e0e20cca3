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
	"github.com/velora-app/velora-backend/internal/platform/ctxutil"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/services"
)

func conversationServiceForTest(t *testing.T, tx *gorm.DB, log *logger.Logger) services.ConversationService {
	t.Helper()
	gate := services.NewGateService(tx, log, repos.NewBlockRepo(tx, log))
	return services.NewConversationService(
		tx, log,
		repos.NewConversationRepo(tx, log),
		repos.NewParticipantRepo(tx, log),
		repos.NewMessageRepo(tx, log),
		repos.NewEdgeRepo(tx, log),
		gate,
		nil,
		services.NewLocalizer(log),
		uuid.Nil,
	)
}

func asProfile(profileID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		AccountID: uuid.New(),
		ProfileID: profileID,
	})
}

func TestSendMessageReplyGate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := conversationServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "gate-a")
	b := testutil.SeedProfile(t, ctx, tx, "gate-b")

	first, err := svc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "hi there"})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	if first.Conversation.Status != types.ConversationInitiated {
		t.Fatalf("status after first send = %q, want INITIATED", first.Conversation.Status)
	}
	if first.Accepted {
		t.Fatalf("first send must not accept the conversation")
	}

	// initiator is held until the counterpart replies
	_, err = svc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "hello again"})
	ae, ok := apierr.As(err)
	if !ok || ae.Code != "await_reply" {
		t.Fatalf("second send = %v, want await_reply", err)
	}

	reply, err := svc.SendMessage(asProfile(b.ID), a.ID, services.MessageInput{Content: "hey"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if !reply.Accepted || reply.Conversation.Status != types.ConversationAccepted {
		t.Fatalf("reply should accept the conversation, got status %q", reply.Conversation.Status)
	}
	if reply.Conversation.ID != first.Conversation.ID {
		t.Fatalf("reply created a second conversation for the pair")
	}

	if _, err := svc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "free to talk now"}); err != nil {
		t.Fatalf("send after accept: %v", err)
	}
}

func TestSendMessageBlockedPair(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := conversationServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "blocked-a")
	b := testutil.SeedProfile(t, ctx, tx, "blocked-b")
	if err := tx.Create(&types.ProfileBlock{
		ID:        uuid.New(),
		BlockerID: b.ID,
		BlockedID: a.ID,
	}).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}

	_, err := svc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "hi"})
	ae, ok := apierr.As(err)
	if !ok || ae.Code != "blocked_pair" {
		t.Fatalf("send across block = %v, want blocked_pair", err)
	}
}

func TestSendMessageCanonicalPairSingleRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := conversationServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "pair-a")
	b := testutil.SeedProfile(t, ctx, tx, "pair-b")

	if _, err := svc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "one"}); err != nil {
		t.Fatalf("a -> b: %v", err)
	}
	if _, err := svc.SendMessage(asProfile(b.ID), a.ID, services.MessageInput{Content: "two"}); err != nil {
		t.Fatalf("b -> a: %v", err)
	}

	var count int64
	aID, bID := types.CanonicalPair(a.ID, b.ID)
	if err := tx.Model(&types.Conversation{}).
		Where("profile_a_id = ? AND profile_b_id = ?", aID, bID).
		Count(&count).Error; err != nil {
		t.Fatalf("count conversations: %v", err)
	}
	if count != 1 {
		t.Fatalf("conversation rows = %d, want 1", count)
	}
}
