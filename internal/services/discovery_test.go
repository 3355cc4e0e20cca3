package services

import (
	"math"
	"testing"
	"time"

	types "github.com/velora-app/velora-backend/internal/domain"
)

func TestBoundingBoxBerlin(t *testing.T) {
	// 50km around Berlin: lat range is 50/111, lon range widens by 1/cos(lat).
	box := BoundingBox(52.52, 13.405, 50)

	wantLatRange := 50.0 / 111.0
	wantLonRange := 50.0 / (111.0 * math.Cos(52.52*math.Pi/180))

	if got := (box.LatMax - box.LatMin) / 2; math.Abs(got-wantLatRange) > 1e-9 {
		t.Fatalf("lat range: got %f want %f", got, wantLatRange)
	}
	if got := (box.LonMax - box.LonMin) / 2; math.Abs(got-wantLonRange) > 1e-9 {
		t.Fatalf("lon range: got %f want %f", got, wantLonRange)
	}

	inside := func(lat, lon float64) bool {
		return lat >= box.LatMin && lat <= box.LatMax && lon >= box.LonMin && lon <= box.LonMax
	}
	if !inside(52.90, 13.40) {
		t.Fatal("point 42km north should be inside the box")
	}
	if inside(53.50, 13.40) {
		t.Fatal("point 109km north should be outside the box")
	}
}

func TestDatingCriteriaForExactWindow(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	gender := types.GenderFemale
	birthday := now.AddDate(-30, 0, -1)
	minAge, maxAge := 25, 35
	viewer := &types.Profile{
		DatingActive: true,
		Birthday:     &birthday,
		Gender:       &gender,
		PrefAgeMin:   &minAge,
		PrefAgeMax:   &maxAge,
	}

	c, err := DatingCriteriaFor(viewer, now)
	if err != nil {
		t.Fatalf("DatingCriteriaFor: %v", err)
	}

	// Born exactly 35 years ago: still 35, inside the window.
	boundary := now.AddDate(-35, 0, 0)
	if boundary.Before(c.BirthdayMin) || boundary.After(c.BirthdayMax) {
		t.Fatalf("35th birthday today should be inside [%v, %v]", c.BirthdayMin, c.BirthdayMax)
	}
	// One day short of the 36th birthday: still 35.
	almostThirtySix := now.AddDate(-36, 0, 1)
	if almostThirtySix.Before(c.BirthdayMin) || almostThirtySix.After(c.BirthdayMax) {
		t.Fatalf("day before 36th birthday should be inside [%v, %v]", c.BirthdayMin, c.BirthdayMax)
	}
	// 36th birthday today: out of the window.
	thirtySix := now.AddDate(-36, 0, 0)
	if !thirtySix.Before(c.BirthdayMin) {
		t.Fatalf("36 year old should be before BirthdayMin %v, got %v", c.BirthdayMin, thirtySix)
	}
	// Born 25 years ago today: just turned 25, inside.
	twentyFive := now.AddDate(-25, 0, 0)
	if twentyFive.After(c.BirthdayMax) {
		t.Fatalf("25th birthday today should be on or before BirthdayMax %v", c.BirthdayMax)
	}
	// Born 25 years ago less a day: still 24, outside.
	almostTwentyFive := now.AddDate(-25, 0, 1)
	if !almostTwentyFive.After(c.BirthdayMax) {
		t.Fatalf("24 year old should be after BirthdayMax %v, got %v", c.BirthdayMax, almostTwentyFive)
	}

	if c.ViewerAge != 30 {
		t.Fatalf("viewer age: got %d want 30", c.ViewerAge)
	}
}

func TestDatingCriteriaForRequiresActiveAndFilled(t *testing.T) {
	now := time.Now().UTC()
	if _, err := DatingCriteriaFor(&types.Profile{}, now); err == nil {
		t.Fatal("inactive profile should be rejected")
	}
	if _, err := DatingCriteriaFor(&types.Profile{DatingActive: true}, now); err == nil {
		t.Fatal("profile without birthday and gender should be rejected")
	}
}
