package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// CompatibilityService evaluates the bidirectional dating filters for one
// specific pair. Both profiles must accept each other; the age window is
// applied exactly, the same as the bulk candidate query.
type CompatibilityService interface {
	CheckPair(dbc dbctx.Context, viewerID, candidateID uuid.UUID) (bool, error)
}

type compatibilityService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	gate        GateService
}

func NewCompatibilityService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo, gate GateService) CompatibilityService {
	return &compatibilityService{
		db:          db,
		log:         log.With("service", "CompatibilityService"),
		profileRepo: profileRepo,
		gate:        gate,
	}
}

func (cs *compatibilityService) CheckPair(dbc dbctx.Context, viewerID, candidateID uuid.UUID) (bool, error) {
	if err := cs.gate.CheckPair(dbc, viewerID, candidateID); err != nil {
		return false, err
	}
	rows, err := cs.profileRepo.GetByIDs(dbc, []uuid.UUID{viewerID, candidateID})
	if err != nil {
		return false, apierr.Internal("profile_lookup_failed", err)
	}
	var viewer, candidate *types.Profile
	for _, p := range rows {
		switch p.ID {
		case viewerID:
			viewer = p
		case candidateID:
			candidate = p
		}
	}
	if viewer == nil || candidate == nil {
		return false, apierr.NotFound("profile_not_found", fmt.Errorf("profile missing"))
	}
	return Compatible(viewer, candidate, time.Now().UTC()), nil
}

// Compatible is the pure pair evaluator. It holds in both directions or
// not at all.
func Compatible(a, b *types.Profile, now time.Time) bool {
	return accepts(a, b, now) && accepts(b, a, now)
}

// accepts reports whether viewer's stored preferences admit candidate.
func accepts(viewer, candidate *types.Profile, now time.Time) bool {
	if !viewer.DatingActive || !candidate.DatingActive {
		return false
	}
	if candidate.Birthday == nil || candidate.Gender == nil {
		return false
	}

	if genders := viewer.PreferredGenders(); len(genders) > 0 {
		if !contains(genders, *candidate.Gender) {
			return false
		}
	}

	age := types.AgeAt(*candidate.Birthday, now)
	minAge := types.PrefAgeMinDefault
	maxAge := types.PrefAgeMaxDefault
	if viewer.PrefAgeMin != nil {
		minAge = *viewer.PrefAgeMin
	}
	if viewer.PrefAgeMax != nil {
		maxAge = *viewer.PrefAgeMax
	}
	if age < minAge || age > maxAge {
		return false
	}

	// An unset children-status always passes; only an explicit status
	// outside a non-empty preference list filters.
	if prefs := viewer.PreferredChildren(); len(prefs) > 0 && candidate.OwnChildren != nil {
		if !contains(prefs, *candidate.OwnChildren) {
			return false
		}
	}
	return true
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
