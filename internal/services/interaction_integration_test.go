package services_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	"github.com/velora-app/velora-backend/internal/data/repos/testutil"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/services"
)

func interactionServiceForTest(t *testing.T, tx *gorm.DB, log *logger.Logger) services.InteractionService {
	t.Helper()
	gate := services.NewGateService(tx, log, repos.NewBlockRepo(tx, log))
	conversation := conversationServiceForTest(t, tx, log)
	return services.NewInteractionService(
		tx, log,
		repos.NewEdgeRepo(tx, log),
		repos.NewProfileRepo(tx, log),
		gate,
		conversation,
		nil,
	)
}

func TestDecideMutualLikeAcceptsConversation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := interactionServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "match-a")
	b := testutil.SeedProfile(t, ctx, tx, "match-b")

	first, err := svc.Decide(asProfile(a.ID), b.ID, types.EdgeKindLike)
	if err != nil {
		t.Fatalf("a likes b: %v", err)
	}
	if first.Matched || first.ConversationID != nil {
		t.Fatalf("one-sided like must not match, got %+v", first)
	}

	second, err := svc.Decide(asProfile(b.ID), a.ID, types.EdgeKindLike)
	if err != nil {
		t.Fatalf("b likes a: %v", err)
	}
	if !second.Matched {
		t.Fatalf("mutual like should match")
	}
	if second.ConversationID == nil {
		t.Fatalf("match should carry the conversation id")
	}

	// The conversation is ACCEPTED before either side has sent a message.
	var conv types.Conversation
	if err := tx.First(&conv, "id = ?", *second.ConversationID).Error; err != nil {
		t.Fatalf("load conversation: %v", err)
	}
	if conv.Status != types.ConversationAccepted {
		t.Fatalf("conversation status = %q, want ACCEPTED", conv.Status)
	}
	var msgCount int64
	if err := tx.Model(&types.Message{}).
		Where("conversation_id = ?", conv.ID).
		Count(&msgCount).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if msgCount != 0 {
		t.Fatalf("messages = %d, want 0", msgCount)
	}

	// Both initiators may now write freely.
	convSvc := conversationServiceForTest(t, tx, log)
	if _, err := convSvc.SendMessage(asProfile(a.ID), b.ID, services.MessageInput{Content: "we matched"}); err != nil {
		t.Fatalf("send after match: %v", err)
	}
}

func TestDecideRejectsSelfAndUnknownKind(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := interactionServiceForTest(t, tx, log)
	ctx := context.Background()

	a := testutil.SeedProfile(t, ctx, tx, "self-a")

	_, err := svc.Decide(asProfile(a.ID), a.ID, types.EdgeKindLike)
	ae, ok := apierr.As(err)
	if !ok || ae.Code != "self_interaction" {
		t.Fatalf("self decide = %v, want self_interaction", err)
	}

	_, err = svc.Decide(asProfile(a.ID), a.ID, "SUPERLIKE")
	ae, ok = apierr.As(err)
	if !ok || ae.Code != "invalid_kind" {
		t.Fatalf("unknown kind = %v, want invalid_kind", err)
	}
}
