package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	types "github.com/velora-app/velora-backend/internal/domain"
)

func datingProfile(gender string, age int, mods ...func(*types.Profile)) *types.Profile {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	birthday := now.AddDate(-age, 0, -1)
	p := &types.Profile{
		DatingActive: true,
		Birthday:     &birthday,
		Gender:       &gender,
	}
	for _, m := range mods {
		m(p)
	}
	return p
}

func compatNow() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func TestCompatibleBothDirections(t *testing.T) {
	a := datingProfile(types.GenderFemale, 30, func(p *types.Profile) {
		p.PrefGenders = datatypes.JSON(`["male"]`)
	})
	b := datingProfile(types.GenderMale, 32, func(p *types.Profile) {
		p.PrefGenders = datatypes.JSON(`["female"]`)
	})
	if !Compatible(a, b, compatNow()) {
		t.Fatal("mutually accepting pair reported incompatible")
	}
}

func TestCompatibleOneDirectionFails(t *testing.T) {
	a := datingProfile(types.GenderFemale, 30, func(p *types.Profile) {
		p.PrefGenders = datatypes.JSON(`["male"]`)
	})
	b := datingProfile(types.GenderMale, 32, func(p *types.Profile) {
		p.PrefGenders = datatypes.JSON(`["nonbinary"]`)
	})
	if Compatible(a, b, compatNow()) {
		t.Fatal("pair compatible even though b does not accept a")
	}
}

func TestCompatibleAgeWindowExact(t *testing.T) {
	maxAge := 35
	a := datingProfile(types.GenderFemale, 30, func(p *types.Profile) {
		p.PrefAgeMax = &maxAge
	})
	inWindow := datingProfile(types.GenderMale, 35)
	outOfWindow := datingProfile(types.GenderMale, 36)

	if !Compatible(a, inWindow, compatNow()) {
		t.Fatal("candidate at the window boundary rejected")
	}
	if Compatible(a, outOfWindow, compatNow()) {
		t.Fatal("candidate one year past the window accepted")
	}
}

func TestCompatibleDefaultsApplyWhenUnset(t *testing.T) {
	a := datingProfile(types.GenderFemale, 30)
	b := datingProfile(types.GenderMale, 98)
	if !Compatible(a, b, compatNow()) {
		t.Fatal("default 18-99 window should accept a 98 year old")
	}
}

func TestCompatibleChildrenPreference(t *testing.T) {
	none := types.ChildrenNone
	has := types.ChildrenHas
	a := datingProfile(types.GenderFemale, 30, func(p *types.Profile) {
		p.OwnChildren = &none
		p.PrefChildren = datatypes.JSON(`["no_children"]`)
	})
	match := datingProfile(types.GenderMale, 30, func(p *types.Profile) {
		p.OwnChildren = &none
	})
	mismatch := datingProfile(types.GenderMale, 30, func(p *types.Profile) {
		p.OwnChildren = &has
	})
	unset := datingProfile(types.GenderMale, 30)

	if !Compatible(a, match, compatNow()) {
		t.Fatal("matching children status rejected")
	}
	if Compatible(a, mismatch, compatNow()) {
		t.Fatal("mismatching children status accepted")
	}
	if !Compatible(a, unset, compatNow()) {
		t.Fatal("unset children status must pass an explicit preference")
	}
}

func TestCompatibleRequiresDatingActive(t *testing.T) {
	a := datingProfile(types.GenderFemale, 30)
	b := datingProfile(types.GenderMale, 30)
	b.DatingActive = false
	if Compatible(a, b, compatNow()) {
		t.Fatal("inactive dating profile accepted")
	}
}

func TestCompatibleRequiresFilledProfile(t *testing.T) {
	a := datingProfile(types.GenderFemale, 30)
	b := &types.Profile{DatingActive: true}
	if Compatible(a, b, compatNow()) {
		t.Fatal("profile without birthday and gender accepted")
	}
}
