package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

var validGenders = map[string]struct{}{
	types.GenderFemale:    {},
	types.GenderMale:      {},
	types.GenderNonBinary: {},
}

var validChildren = map[string]struct{}{
	types.ChildrenNone:  {},
	types.ChildrenHas:   {},
	types.ChildrenWants: {},
}

type UpdateProfileInput struct {
	DisplayName  *string    `json:"display_name,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Gender       *string    `json:"gender,omitempty"`
	OwnChildren  *string    `json:"own_children,omitempty"`
	PrefAgeMin   *int       `json:"pref_age_min,omitempty"`
	PrefAgeMax   *int       `json:"pref_age_max,omitempty"`
	PrefGenders  []string   `json:"pref_genders,omitempty"`
	PrefChildren []string   `json:"pref_children,omitempty"`
	Country      *string    `json:"country,omitempty"`
	City         *string    `json:"city,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
}

type ProfileService interface {
	GetMe(ctx context.Context) (*types.Profile, error)
	Get(ctx context.Context, profileID uuid.UUID) (*types.Profile, error)
	Update(ctx context.Context, in UpdateProfileInput) (*types.Profile, error)
	SetActivity(ctx context.Context, social, dating *bool) (*types.Profile, error)
	UploadAvatar(ctx context.Context, raw []byte) (*types.Profile, error)

	Block(ctx context.Context, targetID uuid.UUID) error
	Unblock(ctx context.Context, targetID uuid.UUID) error
	BlockedProfiles(ctx context.Context) ([]*types.Profile, error)

	SetTags(ctx context.Context, tags []string) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	SetSearchFilter(ctx context.Context, country *string, tags []string) (*types.SearchFilter, error)
	SearchFilter(ctx context.Context) (*types.SearchFilter, error)
}

type profileService struct {
	db            *gorm.DB
	log           *logger.Logger
	profileRepo   repos.ProfileRepo
	blockRepo     repos.BlockRepo
	tagRepo       repos.TagRepo
	filterRepo    repos.SearchFilterRepo
	gate          GateService
	avatarService AvatarService
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	blockRepo repos.BlockRepo,
	tagRepo repos.TagRepo,
	filterRepo repos.SearchFilterRepo,
	gate GateService,
	avatarService AvatarService,
) ProfileService {
	return &profileService{
		db:            db,
		log:           log.With("service", "ProfileService"),
		profileRepo:   profileRepo,
		blockRepo:     blockRepo,
		tagRepo:       tagRepo,
		filterRepo:    filterRepo,
		gate:          gate,
		avatarService: avatarService,
	}
}

func (ps *profileService) GetMe(ctx context.Context) (*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	p, err := ps.profileRepo.GetByID(dbctx.Context{Ctx: ctx}, profileID)
	if err != nil {
		return nil, apierr.NotFound("profile_not_found", err)
	}
	return p, nil
}

// Get hides blocked profiles entirely: a blocked viewer gets the same
// not-found as a nonexistent id.
func (ps *profileService) Get(ctx context.Context, profileID uuid.UUID) (*types.Profile, error) {
	viewerID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if viewerID != profileID {
		blocked, err := ps.blockRepo.PairBlocked(dbc, viewerID, profileID)
		if err != nil {
			return nil, apierr.Internal("block_lookup_failed", err)
		}
		if blocked {
			return nil, apierr.NotFound("profile_not_found", fmt.Errorf("profile not found"))
		}
	}
	p, err := ps.profileRepo.GetByID(dbc, profileID)
	if err != nil {
		return nil, apierr.NotFound("profile_not_found", err)
	}
	return p, nil
}

func (ps *profileService) Update(ctx context.Context, in UpdateProfileInput) (*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, apierr.BadRequest("missing_display_name", fmt.Errorf("display name cannot be empty"))
		}
		updates["display_name"] = name
	}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Birthday != nil {
		if types.AgeAt(*in.Birthday, time.Now().UTC()) < 18 {
			return nil, apierr.BadRequest("underage", fmt.Errorf("must be at least 18"))
		}
		updates["birthday"] = *in.Birthday
	}
	if in.Gender != nil {
		if _, ok := validGenders[*in.Gender]; !ok {
			return nil, apierr.BadRequest("invalid_gender", fmt.Errorf("unknown gender %q", *in.Gender))
		}
		updates["gender"] = *in.Gender
	}
	if in.OwnChildren != nil {
		if _, ok := validChildren[*in.OwnChildren]; !ok {
			return nil, apierr.BadRequest("invalid_children", fmt.Errorf("unknown children status %q", *in.OwnChildren))
		}
		updates["own_children"] = *in.OwnChildren
	}
	if in.PrefAgeMin != nil || in.PrefAgeMax != nil {
		if err := validateAgeWindow(in.PrefAgeMin, in.PrefAgeMax); err != nil {
			return nil, err
		}
		if in.PrefAgeMin != nil {
			updates["pref_age_min"] = *in.PrefAgeMin
		}
		if in.PrefAgeMax != nil {
			updates["pref_age_max"] = *in.PrefAgeMax
		}
	}
	if in.PrefGenders != nil {
		raw, err := marshalChoiceList(in.PrefGenders, validGenders, "invalid_gender")
		if err != nil {
			return nil, err
		}
		updates["pref_genders"] = raw
	}
	if in.PrefChildren != nil {
		raw, err := marshalChoiceList(in.PrefChildren, validChildren, "invalid_children")
		if err != nil {
			return nil, err
		}
		updates["pref_children"] = raw
	}
	if in.Country != nil {
		country := strings.ToUpper(strings.TrimSpace(*in.Country))
		if country != "" && len(country) != 2 {
			return nil, apierr.BadRequest("invalid_country", fmt.Errorf("country must be a 2-letter code"))
		}
		updates["country"] = country
	}
	if in.City != nil {
		updates["city"] = strings.TrimSpace(*in.City)
	}
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		updates["longitude"] = *in.Longitude
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := ps.profileRepo.UpdateFields(dbc, profileID, updates); err != nil {
		return nil, apierr.Internal("profile_write_failed", err)
	}
	p, err := ps.profileRepo.GetByID(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("profile_lookup_failed", err)
	}
	return p, nil
}

func validateAgeWindow(minAge, maxAge *int) error {
	lo := types.PrefAgeMinDefault
	hi := types.PrefAgeMaxDefault
	if minAge != nil {
		lo = *minAge
	}
	if maxAge != nil {
		hi = *maxAge
	}
	if lo < types.PrefAgeMinDefault || hi > types.PrefAgeMaxDefault || lo > hi {
		return apierr.BadRequest("invalid_age_window", fmt.Errorf("age window must satisfy %d <= min <= max <= %d",
			types.PrefAgeMinDefault, types.PrefAgeMaxDefault))
	}
	return nil
}

func marshalChoiceList(values []string, valid map[string]struct{}, code string) (datatypes.JSON, error) {
	for _, v := range values {
		if _, ok := valid[v]; !ok {
			return nil, apierr.BadRequest(code, fmt.Errorf("unknown value %q", v))
		}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}
	return datatypes.JSON(raw), nil
}

func (ps *profileService) SetActivity(ctx context.Context, social, dating *bool) (*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if social != nil {
		updates["social_active"] = *social
	}
	if dating != nil {
		updates["dating_active"] = *dating
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := ps.profileRepo.UpdateFields(dbc, profileID, updates); err != nil {
		return nil, apierr.Internal("profile_write_failed", err)
	}
	p, err := ps.profileRepo.GetByID(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("profile_lookup_failed", err)
	}
	return p, nil
}

func (ps *profileService) UploadAvatar(ctx context.Context, raw []byte) (*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	if ps.avatarService == nil {
		return nil, apierr.Internal("avatar_unconfigured", fmt.Errorf("avatar service not configured"))
	}

	var updated *types.Profile
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := ps.profileRepo.GetByID(dbc, profileID)
		if err != nil {
			return apierr.NotFound("profile_not_found", err)
		}
		if err := ps.avatarService.CreateAndStoreAvatarFromImage(ctx, tx, p, raw); err != nil {
			return apierr.BadRequest("invalid_image", err)
		}
		if err := ps.profileRepo.UpdateAvatarFields(dbc, p.ID, p.AvatarMediaKey, p.AvatarURL); err != nil {
			return apierr.Internal("profile_write_failed", err)
		}
		updated = p
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (ps *profileService) Block(ctx context.Context, targetID uuid.UUID) error {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return err
	}
	if actorID == targetID {
		return apierr.BadRequest("self_interaction", fmt.Errorf("cannot block yourself"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ps.profileRepo.GetByID(dbc, targetID); err != nil {
		return apierr.NotFound("profile_not_found", err)
	}
	if err := ps.blockRepo.Create(dbc, actorID, targetID); err != nil {
		return apierr.Internal("block_write_failed", err)
	}
	return nil
}

func (ps *profileService) Unblock(ctx context.Context, targetID uuid.UUID) error {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := ps.blockRepo.Delete(dbc, actorID, targetID); err != nil {
		return apierr.Internal("block_write_failed", err)
	}
	return nil
}

func (ps *profileService) BlockedProfiles(ctx context.Context) ([]*types.Profile, error) {
	actorID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := ps.blockRepo.ListBlockedIDs(dbc, actorID)
	if err != nil {
		return nil, apierr.Internal("block_lookup_failed", err)
	}
	rows, err := ps.profileRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.Internal("profile_lookup_failed", err)
	}
	return rows, nil
}

func (ps *profileService) SetTags(ctx context.Context, tags []string) ([]string, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	normalized := normalizeTags(tags)
	if len(normalized) > 20 {
		return nil, apierr.BadRequest("too_many_tags", fmt.Errorf("at most 20 tags"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := ps.tagRepo.ReplaceForProfile(dbc, profileID, normalized); err != nil {
		return nil, apierr.Internal("tag_write_failed", err)
	}
	return normalized, nil
}

func (ps *profileService) Tags(ctx context.Context) ([]string, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := ps.tagRepo.ListByProfile(dbctx.Context{Ctx: ctx}, profileID)
	if err != nil {
		return nil, apierr.Internal("tag_read_failed", err)
	}
	return tags, nil
}

func (ps *profileService) SetSearchFilter(ctx context.Context, country *string, tags []string) (*types.SearchFilter, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	if country != nil {
		c := strings.ToUpper(strings.TrimSpace(*country))
		if c != "" && len(c) != 2 {
			return nil, apierr.BadRequest("invalid_country", fmt.Errorf("country must be a 2-letter code"))
		}
		country = &c
	}
	normalized := normalizeTags(tags)
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}
	row, err := ps.filterRepo.Upsert(dbctx.Context{Ctx: ctx}, &types.SearchFilter{
		ProfileID: profileID,
		Country:   country,
		Tags:      datatypes.JSON(raw),
	})
	if err != nil {
		return nil, apierr.Internal("filter_write_failed", err)
	}
	return row, nil
}

func (ps *profileService) SearchFilter(ctx context.Context) (*types.SearchFilter, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	row, err := ps.filterRepo.GetByProfile(dbctx.Context{Ctx: ctx}, profileID)
	if err != nil {
		return nil, apierr.Internal("filter_read_failed", err)
	}
	return row, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
