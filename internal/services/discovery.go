package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

const kmPerDegreeLat = 111.0

// BoundingBox approximates a radius around a point with a lat/lon
// rectangle. Longitude degrees shrink with latitude, so the lon range is
// widened by 1/cos(lat).
func BoundingBox(lat, lon, radiusKM float64) repos.GeoBox {
	latRange := radiusKM / kmPerDegreeLat
	lonRange := radiusKM / (kmPerDegreeLat * math.Cos(lat*math.Pi/180))
	return repos.GeoBox{
		LatMin: lat - latRange,
		LatMax: lat + latRange,
		LonMin: lon - lonRange,
		LonMax: lon + lonRange,
	}
}

// DiscoveryService serves the two candidate feeds and the geo post feed.
// Dating candidates are filtered bidirectionally in one query; social
// search requires a stored filter, absence means an empty result.
type DiscoveryService interface {
	DatingCandidates(ctx context.Context, limit int) ([]*types.Profile, error)
	SocialSearch(ctx context.Context, limit int) ([]*types.Profile, error)
	NearbyProfiles(ctx context.Context, radiusKM float64, limit int) ([]*types.Profile, error)
	NearbyPosts(ctx context.Context, radiusKM float64, limit int) ([]*types.Post, error)
}

type discoveryService struct {
	db            *gorm.DB
	log           *logger.Logger
	profileRepo   repos.ProfileRepo
	discoveryRepo repos.DiscoveryRepo
	edgeRepo      repos.EdgeRepo
	filterRepo    repos.SearchFilterRepo
	postRepo      repos.PostRepo
}

func NewDiscoveryService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	discoveryRepo repos.DiscoveryRepo,
	edgeRepo repos.EdgeRepo,
	filterRepo repos.SearchFilterRepo,
	postRepo repos.PostRepo,
) DiscoveryService {
	return &discoveryService{
		db:            db,
		log:           log.With("service", "DiscoveryService"),
		profileRepo:   profileRepo,
		discoveryRepo: discoveryRepo,
		edgeRepo:      edgeRepo,
		filterRepo:    filterRepo,
		postRepo:      postRepo,
	}
}

func (ds *discoveryService) DatingCandidates(ctx context.Context, limit int) ([]*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	viewer, err := ds.profileRepo.GetByID(dbc, profileID)
	if err != nil {
		return nil, apierr.NotFound("profile_not_found", err)
	}
	criteria, err := DatingCriteriaFor(viewer, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	decided, err := ds.edgeRepo.ListDecidedIDs(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("edge_read_failed", err)
	}
	criteria.ExcludeIDs = decided
	criteria.Limit = limit
	out, err := ds.discoveryRepo.DatingCandidates(dbc, *criteria)
	if err != nil {
		return nil, apierr.Internal("discovery_query_failed", err)
	}
	return out, nil
}

// DatingCriteriaFor resolves the viewer's stored preferences into query
// criteria. The candidate birthday window is the exact inverse of the
// viewer's age window: no widening at the boundaries.
func DatingCriteriaFor(viewer *types.Profile, now time.Time) (*repos.DatingCriteria, error) {
	if viewer == nil {
		return nil, apierr.NotFound("profile_not_found", fmt.Errorf("viewer profile missing"))
	}
	if !viewer.DatingActive {
		return nil, apierr.PolicyViolation("dating_inactive", fmt.Errorf("dating scope is not active"))
	}
	if viewer.Birthday == nil || viewer.Gender == nil {
		return nil, apierr.BadRequest("profile_incomplete", fmt.Errorf("birthday and gender are required for dating"))
	}

	minAge := types.PrefAgeMinDefault
	maxAge := types.PrefAgeMaxDefault
	if viewer.PrefAgeMin != nil {
		minAge = *viewer.PrefAgeMin
	}
	if viewer.PrefAgeMax != nil {
		maxAge = *viewer.PrefAgeMax
	}

	// A candidate aged maxAge turned maxAge at most a year less a day ago.
	birthdayMin := now.AddDate(-(maxAge + 1), 0, 1)
	birthdayMax := now.AddDate(-minAge, 0, 0)

	return &repos.DatingCriteria{
		ViewerID:       viewer.ID,
		ViewerGender:   *viewer.Gender,
		ViewerAge:      types.AgeAt(*viewer.Birthday, now),
		ViewerChildren: viewer.OwnChildren,
		Genders:        viewer.PreferredGenders(),
		BirthdayMin:    birthdayMin,
		BirthdayMax:    birthdayMax,
		PrefChildren:   viewer.PreferredChildren(),
	}, nil
}

func (ds *discoveryService) SocialSearch(ctx context.Context, limit int) ([]*types.Profile, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	filter, err := ds.filterRepo.GetByProfile(dbc, profileID)
	if err != nil {
		return nil, apierr.Internal("filter_read_failed", err)
	}
	if filter == nil {
		return []*types.Profile{}, nil
	}
	out, err := ds.discoveryRepo.SocialCandidates(dbc, repos.SocialCriteria{
		ViewerID: profileID,
		Country:  filter.Country,
		Tags:     filter.TagList(),
		Limit:    limit,
	})
	if err != nil {
		return nil, apierr.Internal("discovery_query_failed", err)
	}
	return out, nil
}

func (ds *discoveryService) NearbyProfiles(ctx context.Context, radiusKM float64, limit int) ([]*types.Profile, error) {
	profileID, box, err := ds.viewerBox(ctx, radiusKM)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	out, err := ds.discoveryRepo.NearbyProfiles(dbc, profileID, box.LatMin, box.LatMax, box.LonMin, box.LonMax, limit)
	if err != nil {
		return nil, apierr.Internal("discovery_query_failed", err)
	}
	return out, nil
}

func (ds *discoveryService) NearbyPosts(ctx context.Context, radiusKM float64, limit int) ([]*types.Post, error) {
	profileID, box, err := ds.viewerBox(ctx, radiusKM)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	out, err := ds.postRepo.ListInBox(dbc, profileID, box, limit)
	if err != nil {
		return nil, apierr.Internal("discovery_query_failed", err)
	}
	return out, nil
}

// viewerBox resolves the caller's stored location into a bounding box.
func (ds *discoveryService) viewerBox(ctx context.Context, radiusKM float64) (uuid.UUID, repos.GeoBox, error) {
	profileID, err := requireProfile(ctx)
	if err != nil {
		return uuid.Nil, repos.GeoBox{}, err
	}
	if radiusKM <= 0 || radiusKM > 500 {
		radiusKM = 50
	}
	dbc := dbctx.Context{Ctx: ctx}
	viewer, err := ds.profileRepo.GetByID(dbc, profileID)
	if err != nil {
		return uuid.Nil, repos.GeoBox{}, apierr.NotFound("profile_not_found", err)
	}
	if viewer.Latitude == nil || viewer.Longitude == nil {
		return uuid.Nil, repos.GeoBox{}, apierr.BadRequest("location_missing", fmt.Errorf("profile has no stored location"))
	}
	return profileID, BoundingBox(*viewer.Latitude, *viewer.Longitude, radiusKM), nil
}
