package post_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos/post"
	"github.com/velora-app/velora-backend/internal/data/repos/testutil"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
)

func seedPost(t *testing.T, tx *gorm.DB, authorID uuid.UUID, body string, lat, lon *float64) *types.Post {
	t.Helper()
	p := &types.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Body:      body,
		Latitude:  lat,
		Longitude: lon,
	}
	if err := tx.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

func ptr(f float64) *float64 { return &f }

func TestListInBoxFiltersByLocationAndBlocks(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := post.NewPostRepo(tx, testutil.Logger(t))

	viewer := testutil.SeedProfile(t, ctx, tx, "box-viewer")
	nearAuthor := testutil.SeedProfile(t, ctx, tx, "box-near")
	farAuthor := testutil.SeedProfile(t, ctx, tx, "box-far")
	blockedAuthor := testutil.SeedProfile(t, ctx, tx, "box-blocked")

	inside := seedPost(t, tx, nearAuthor.ID, "inside", ptr(52.52), ptr(13.40))
	seedPost(t, tx, farAuthor.ID, "outside", ptr(48.13), ptr(11.58))
	seedPost(t, tx, blockedAuthor.ID, "hidden", ptr(52.53), ptr(13.41))
	seedPost(t, tx, nearAuthor.ID, "no location", nil, nil)

	if err := tx.Create(&types.ProfileBlock{
		ID:        uuid.New(),
		BlockerID: viewer.ID,
		BlockedID: blockedAuthor.ID,
	}).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}

	box := post.Box{LatMin: 52.0, LatMax: 53.0, LonMin: 13.0, LonMax: 14.0}
	got, err := repo.ListInBox(dbc, viewer.ID, box, 50)
	if err != nil {
		t.Fatalf("list in box: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Fatalf("posts in box = %d, want exactly the inside post", len(got))
	}
}

func TestDeleteRequiresAuthor(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := post.NewPostRepo(tx, testutil.Logger(t))

	author := testutil.SeedProfile(t, ctx, tx, "del-author")
	other := testutil.SeedProfile(t, ctx, tx, "del-other")
	p := seedPost(t, tx, author.ID, "mine", nil, nil)

	if err := repo.Delete(dbc, p.ID, other.ID); err != nil {
		t.Fatalf("delete by non-author should be a silent no-op, got %v", err)
	}
	var count int64
	if err := tx.Model(&types.Post{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 1 {
		t.Fatalf("post deleted by non-author")
	}

	if err := repo.Delete(dbc, p.ID, author.ID); err != nil {
		t.Fatalf("delete by author: %v", err)
	}
	if err := tx.Model(&types.Post{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		t.Fatalf("recount posts: %v", err)
	}
	if count != 0 {
		t.Fatalf("post still present after author delete")
	}
}
