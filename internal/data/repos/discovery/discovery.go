package discovery

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// DatingCriteria carries the viewer-side values already resolved by the
// service layer. Birthday bounds encode the viewer's exact age window.
type DatingCriteria struct {
	ViewerID       uuid.UUID
	ViewerGender   string
	ViewerAge      int
	ViewerChildren *string

	Genders      []string
	BirthdayMin  time.Time
	BirthdayMax  time.Time
	PrefChildren []string

	// ExcludeIDs removes already-decided profiles from the feed.
	ExcludeIDs []uuid.UUID

	Limit int
}

type SocialCriteria struct {
	ViewerID uuid.UUID
	Country  *string
	Tags     []string
	Limit    int
}

type DiscoveryRepo interface {
	// DatingCandidates applies the full bidirectional filter set in SQL:
	// both sides' gender, age window and children preferences must accept
	// the other, blocked pairs and already-decided profiles are excluded.
	DatingCandidates(dbc dbctx.Context, c DatingCriteria) ([]*types.Profile, error)
	SocialCandidates(dbc dbctx.Context, c SocialCriteria) ([]*types.Profile, error)
	// NearbyProfiles returns social-active profiles whose stored location
	// falls inside the bounding box, minus blocked pairs.
	NearbyProfiles(dbc dbctx.Context, viewerID uuid.UUID, latMin, latMax, lonMin, lonMax float64, limit int) ([]*types.Profile, error)
}

type discoveryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscoveryRepo(db *gorm.DB, log *logger.Logger) DiscoveryRepo {
	return &discoveryRepo{db: db, log: log.With("repo", "DiscoveryRepo")}
}

func (r *discoveryRepo) DatingCandidates(dbc dbctx.Context, c DatingCriteria) ([]*types.Profile, error) {
	if c.ViewerID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id <> ?", c.ViewerID).
		Where("dating_active = TRUE").
		Where("birthday IS NOT NULL AND gender IS NOT NULL").
		Where("id NOT IN (SELECT blocked_id FROM profile_block WHERE blocker_id = ?)", c.ViewerID).
		Where("id NOT IN (SELECT blocker_id FROM profile_block WHERE blocked_id = ?)", c.ViewerID)

	if len(c.Genders) > 0 {
		q = q.Where("gender IN ?", c.Genders)
	}
	q = q.Where("birthday BETWEEN ? AND ?", c.BirthdayMin, c.BirthdayMax)

	// The candidate must accept the viewer back. NULL and empty preference
	// lists both mean "no preference".
	q = q.Where("(pref_genders IS NULL OR pref_genders = '[]'::jsonb OR pref_genders @> to_jsonb(?::text))", c.ViewerGender)
	q = q.Where("? BETWEEN COALESCE(pref_age_min, ?) AND COALESCE(pref_age_max, ?)",
		c.ViewerAge, types.PrefAgeMinDefault, types.PrefAgeMaxDefault)

	// An unset children-status passes the other side's children check in
	// both directions.
	if len(c.PrefChildren) > 0 {
		q = q.Where("(own_children IS NULL OR own_children IN ?)", c.PrefChildren)
	}
	if c.ViewerChildren != nil {
		q = q.Where("(pref_children IS NULL OR pref_children = '[]'::jsonb OR pref_children @> to_jsonb(?::text))", *c.ViewerChildren)
	}

	if len(c.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", c.ExcludeIDs)
	}

	limit := c.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Profile
	if err := q.Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *discoveryRepo) NearbyProfiles(dbc dbctx.Context, viewerID uuid.UUID, latMin, latMax, lonMin, lonMax float64, limit int) ([]*types.Profile, error) {
	if viewerID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Profile
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id <> ?", viewerID).
		Where("social_active = TRUE").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", latMin, latMax).
		Where("longitude BETWEEN ? AND ?", lonMin, lonMax).
		Where("id NOT IN (SELECT blocked_id FROM profile_block WHERE blocker_id = ?)", viewerID).
		Where("id NOT IN (SELECT blocker_id FROM profile_block WHERE blocked_id = ?)", viewerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *discoveryRepo) SocialCandidates(dbc dbctx.Context, c SocialCriteria) ([]*types.Profile, error) {
	if c.ViewerID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	limit := c.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id <> ?", c.ViewerID).
		Where("social_active = TRUE").
		Where("id NOT IN (SELECT blocked_id FROM profile_block WHERE blocker_id = ?)", c.ViewerID).
		Where("id NOT IN (SELECT blocker_id FROM profile_block WHERE blocked_id = ?)", c.ViewerID)

	if c.Country != nil && *c.Country != "" {
		q = q.Where("country = ?", *c.Country)
	}
	if len(c.Tags) > 0 {
		q = q.Where("id IN (SELECT profile_id FROM profile_tag WHERE tag IN ?)", c.Tags)
	}

	var out []*types.Profile
	if err := q.Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
