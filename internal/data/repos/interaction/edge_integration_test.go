package interaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/velora-app/velora-backend/internal/domain"

	"github.com/velora-app/velora-backend/internal/data/repos/interaction"
	"github.com/velora-app/velora-backend/internal/data/repos/testutil"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
)

func TestEdgeUpsertReplacesKind(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := interaction.NewEdgeRepo(tx, testutil.Logger(t))

	a := testutil.SeedProfile(t, ctx, tx, "edge-a")
	b := testutil.SeedProfile(t, ctx, tx, "edge-b")

	liked, err := repo.Upsert(dbc, a.ID, b.ID, types.EdgeKindLike)
	if err != nil {
		t.Fatalf("upsert like: %v", err)
	}
	if liked.Kind != types.EdgeKindLike {
		t.Fatalf("kind = %q, want LIKE", liked.Kind)
	}

	passed, err := repo.Upsert(dbc, a.ID, b.ID, types.EdgeKindPass)
	if err != nil {
		t.Fatalf("upsert pass: %v", err)
	}
	if passed.ID != liked.ID {
		t.Fatalf("upsert created a second row for the same pair")
	}
	if passed.Kind != types.EdgeKindPass {
		t.Fatalf("kind = %q, want PASS", passed.Kind)
	}

	var count int64
	if err := tx.Model(&types.InteractionEdge{}).
		Where("from_profile_id = ? AND to_profile_id = ?", a.ID, b.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if count != 1 {
		t.Fatalf("edge rows = %d, want 1", count)
	}
}

func TestEdgeMutualLikeDetection(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := interaction.NewEdgeRepo(tx, testutil.Logger(t))

	a := testutil.SeedProfile(t, ctx, tx, "mutual-a")
	b := testutil.SeedProfile(t, ctx, tx, "mutual-b")
	c := testutil.SeedProfile(t, ctx, tx, "mutual-c")

	mustUpsert(t, repo, dbc, a.ID, b.ID, types.EdgeKindLike)
	mustUpsert(t, repo, dbc, b.ID, a.ID, types.EdgeKindLike)
	// one-directional like must not count
	mustUpsert(t, repo, dbc, a.ID, c.ID, types.EdgeKindLike)
	// pass against like must not count
	mustUpsert(t, repo, dbc, c.ID, a.ID, types.EdgeKindPass)

	ids, err := repo.ListMutualLikeIDs(dbc, a.ID)
	if err != nil {
		t.Fatalf("list mutual likes: %v", err)
	}
	if len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("mutual ids = %v, want [%s]", ids, b.ID)
	}

	unseen, err := repo.CountUnseenMatches(dbc, a.ID)
	if err != nil {
		t.Fatalf("count unseen matches: %v", err)
	}
	if unseen != 1 {
		t.Fatalf("unseen matches = %d, want 1", unseen)
	}

	if err := repo.MarkMatchSeen(dbc, a.ID, b.ID, time.Now()); err != nil {
		t.Fatalf("mark match seen: %v", err)
	}
	unseen, err = repo.CountUnseenMatches(dbc, a.ID)
	if err != nil {
		t.Fatalf("recount unseen matches: %v", err)
	}
	if unseen != 0 {
		t.Fatalf("unseen matches after seen = %d, want 0", unseen)
	}
}

func TestEdgeUnseenLikeCounters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := interaction.NewEdgeRepo(tx, testutil.Logger(t))

	a := testutil.SeedProfile(t, ctx, tx, "seen-a")
	b := testutil.SeedProfile(t, ctx, tx, "seen-b")
	c := testutil.SeedProfile(t, ctx, tx, "seen-c")

	mustUpsert(t, repo, dbc, b.ID, a.ID, types.EdgeKindLike)
	mustUpsert(t, repo, dbc, c.ID, a.ID, types.EdgeKindLike)

	unseen, err := repo.CountUnseenLikesReceived(dbc, a.ID)
	if err != nil {
		t.Fatalf("count unseen likes: %v", err)
	}
	if unseen != 2 {
		t.Fatalf("unseen likes = %d, want 2", unseen)
	}

	if err := repo.MarkLikesSeen(dbc, a.ID, time.Now()); err != nil {
		t.Fatalf("mark likes seen: %v", err)
	}
	unseen, err = repo.CountUnseenLikesReceived(dbc, a.ID)
	if err != nil {
		t.Fatalf("recount unseen likes: %v", err)
	}
	if unseen != 0 {
		t.Fatalf("unseen likes after seen = %d, want 0", unseen)
	}

	// a new like from a previously passed-on profile resets visibility
	mustUpsert(t, repo, dbc, b.ID, a.ID, types.EdgeKindPass)
	mustUpsert(t, repo, dbc, b.ID, a.ID, types.EdgeKindLike)
	unseen, err = repo.CountUnseenLikesReceived(dbc, a.ID)
	if err != nil {
		t.Fatalf("count after re-like: %v", err)
	}
	if unseen != 1 {
		t.Fatalf("unseen likes after re-like = %d, want 1", unseen)
	}
}

func mustUpsert(t *testing.T, repo interaction.EdgeRepo, dbc dbctx.Context, from, to uuid.UUID, kind string) {
	t.Helper()
	if _, err := repo.Upsert(dbc, from, to, kind); err != nil {
		t.Fatalf("upsert %s -> %s (%s): %v", from, to, kind, err)
	}
}
