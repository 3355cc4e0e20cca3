package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/velora-app/velora-backend/internal/data/repos/discovery"
	"github.com/velora-app/velora-backend/internal/data/repos/interaction"
	"github.com/velora-app/velora-backend/internal/data/repos/testutil"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
)

// criteriaFor mirrors the service-side window: a candidate aged exactly
// maxAge still matches until the day before their next birthday.
func criteriaFor(viewer *types.Profile, viewerAge, minAge, maxAge int, genders []string) discovery.DatingCriteria {
	now := time.Now().UTC()
	return discovery.DatingCriteria{
		ViewerID:     viewer.ID,
		ViewerGender: *viewer.Gender,
		ViewerAge:    viewerAge,
		Genders:      genders,
		BirthdayMin:  now.AddDate(-(maxAge + 1), 0, 1),
		BirthdayMax:  now.AddDate(-minAge, 0, 0),
		Limit:        50,
	}
}

func TestDatingCandidatesFiltering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := discovery.NewDiscoveryRepo(tx, testutil.Logger(t))

	viewer := testutil.SeedDatingProfile(t, ctx, tx, "disc-viewer", "female", 30, []string{"male"})

	match := testutil.SeedDatingProfile(t, ctx, tx, "disc-match", "male", 32, []string{"female"})
	wrongGender := testutil.SeedDatingProfile(t, ctx, tx, "disc-gender", "female", 32, []string{"female"})
	tooOld := testutil.SeedDatingProfile(t, ctx, tx, "disc-old", "male", 55, []string{"female"})
	rejectsViewer := testutil.SeedDatingProfile(t, ctx, tx, "disc-rejects", "male", 32, []string{"male"})
	openToAll := testutil.SeedDatingProfile(t, ctx, tx, "disc-open", "male", 28, nil)

	got, err := repo.DatingCandidates(dbc, criteriaFor(viewer, 30, 25, 40, []string{"male"}))
	if err != nil {
		t.Fatalf("dating candidates: %v", err)
	}

	ids := map[uuid.UUID]bool{}
	for _, p := range got {
		ids[p.ID] = true
	}
	if !ids[match.ID] {
		t.Fatalf("expected %s in candidates", match.DisplayName)
	}
	if !ids[openToAll.ID] {
		t.Fatalf("candidate with no gender preference must accept everyone")
	}
	if ids[wrongGender.ID] {
		t.Fatalf("gender filter leaked %s", wrongGender.DisplayName)
	}
	if ids[tooOld.ID] {
		t.Fatalf("age window leaked %s", tooOld.DisplayName)
	}
	if ids[rejectsViewer.ID] {
		t.Fatalf("reverse acceptance leaked %s", rejectsViewer.DisplayName)
	}
}

func TestDatingCandidatesExcludeBlockedAndDecided(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := discovery.NewDiscoveryRepo(tx, testutil.Logger(t))

	viewer := testutil.SeedDatingProfile(t, ctx, tx, "excl-viewer", "female", 30, []string{"male"})
	blockedMe := testutil.SeedDatingProfile(t, ctx, tx, "excl-blocker", "male", 30, []string{"female"})
	decided := testutil.SeedDatingProfile(t, ctx, tx, "excl-decided", "male", 30, []string{"female"})
	fresh := testutil.SeedDatingProfile(t, ctx, tx, "excl-fresh", "male", 30, []string{"female"})

	if err := tx.Create(&types.ProfileBlock{
		ID:        uuid.New(),
		BlockerID: blockedMe.ID,
		BlockedID: viewer.ID,
	}).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}
	if err := tx.Create(&types.InteractionEdge{
		ID:            uuid.New(),
		FromProfileID: viewer.ID,
		ToProfileID:   decided.ID,
		Kind:          types.EdgeKindPass,
	}).Error; err != nil {
		t.Fatalf("seed edge: %v", err)
	}

	criteria := criteriaFor(viewer, 30, 18, 99, []string{"male"})
	decidedIDs, err := interaction.NewEdgeRepo(tx, testutil.Logger(t)).ListDecidedIDs(dbc, viewer.ID)
	if err != nil {
		t.Fatalf("list decided: %v", err)
	}
	criteria.ExcludeIDs = decidedIDs

	got, err := repo.DatingCandidates(dbc, criteria)
	if err != nil {
		t.Fatalf("dating candidates: %v", err)
	}
	ids := map[uuid.UUID]bool{}
	for _, p := range got {
		ids[p.ID] = true
	}
	if !ids[fresh.ID] {
		t.Fatalf("undecided candidate missing")
	}
	if ids[blockedMe.ID] {
		t.Fatalf("block exclusion leaked the blocking profile")
	}
	if ids[decided.ID] {
		t.Fatalf("already-decided candidate resurfaced")
	}
}

func TestDatingCandidatesChildrenStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := discovery.NewDiscoveryRepo(tx, testutil.Logger(t))

	viewer := testutil.SeedDatingProfile(t, ctx, tx, "kids-viewer", "female", 30, []string{"male"})
	noKids := testutil.SeedDatingProfile(t, ctx, tx, "kids-none", "male", 30, []string{"female"})
	hasKids := testutil.SeedDatingProfile(t, ctx, tx, "kids-has", "male", 30, []string{"female"})
	unsetKids := testutil.SeedDatingProfile(t, ctx, tx, "kids-unset", "male", 30, []string{"female"})
	picky := testutil.SeedDatingProfile(t, ctx, tx, "kids-picky", "male", 30, []string{"female"})

	for id, updates := range map[uuid.UUID]map[string]interface{}{
		noKids.ID:  {"own_children": types.ChildrenNone},
		hasKids.ID: {"own_children": types.ChildrenHas},
		// picky has an explicit children preference; the viewer's own
		// status stays unset.
		picky.ID: {"pref_children": datatypes.JSON(`["has_children"]`)},
	} {
		if err := tx.Model(&types.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			t.Fatalf("seed children fields: %v", err)
		}
	}

	criteria := criteriaFor(viewer, 30, 18, 99, []string{"male"})
	criteria.PrefChildren = []string{types.ChildrenNone}

	got, err := repo.DatingCandidates(dbc, criteria)
	if err != nil {
		t.Fatalf("dating candidates: %v", err)
	}
	ids := map[uuid.UUID]bool{}
	for _, p := range got {
		ids[p.ID] = true
	}
	if !ids[noKids.ID] {
		t.Fatalf("matching children status missing")
	}
	if ids[hasKids.ID] {
		t.Fatalf("children preference leaked a mismatching status")
	}
	if !ids[unsetKids.ID] {
		t.Fatalf("unset children status must pass an explicit preference")
	}
	if !ids[picky.ID] {
		t.Fatalf("viewer with unset children status must pass the candidate's preference")
	}
}
