package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
)

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Account {
	tb.Helper()
	a := &types.Account{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Locale:   "en",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Profile {
	tb.Helper()
	a := SeedAccount(tb, ctx, tx, name+"@example.test")
	p := &types.Profile{
		ID:           uuid.New(),
		AccountID:    a.ID,
		DisplayName:  name,
		SocialActive: true,
		DatingActive: true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedDatingProfile builds a fully filled dating profile so the candidate
// queries have every column they filter on.
func SeedDatingProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name, gender string, age int, prefGenders []string) *types.Profile {
	tb.Helper()
	p := SeedProfile(tb, ctx, tx, name)
	birthday := time.Now().UTC().AddDate(-age, 0, -1)
	updates := map[string]interface{}{
		"birthday": birthday,
		"gender":   gender,
	}
	if len(prefGenders) > 0 {
		raw, err := json.Marshal(prefGenders)
		if err != nil {
			tb.Fatalf("marshal pref genders: %v", err)
		}
		updates["pref_genders"] = datatypes.JSON(raw)
	}
	if err := tx.WithContext(ctx).
		Model(&types.Profile{}).
		Where("id = ?", p.ID).
		Updates(updates).Error; err != nil {
		tb.Fatalf("seed dating profile: %v", err)
	}
	p.Birthday = &birthday
	p.Gender = &gender
	return p
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, initiator, other uuid.UUID) *types.Conversation {
	tb.Helper()
	aID, bID := types.CanonicalPair(initiator, other)
	c := &types.Conversation{
		ID:          uuid.New(),
		ProfileAID:  aID,
		ProfileBID:  bID,
		Status:      types.ConversationInitiated,
		InitiatorID: initiator,
		CallState:   types.CallStateIdle,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	parts := []*types.ConversationParticipant{
		{ID: uuid.New(), ConversationID: c.ID, ProfileID: aID, IsCallable: true},
		{ID: uuid.New(), ConversationID: c.ID, ProfileID: bID, IsCallable: true},
	}
	if err := tx.WithContext(ctx).Create(&parts).Error; err != nil {
		tb.Fatalf("seed participants: %v", err)
	}
	return c
}
