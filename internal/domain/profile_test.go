package domain

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestAgeAt(t *testing.T) {
	birthday := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before anniversary", time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), 33},
		{"on anniversary", time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 34},
		{"day after anniversary", time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), 34},
		{"earlier month", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 33},
		{"later month", time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), 34},
	}
	for _, tc := range cases {
		if got := AgeAt(birthday, tc.now); got != tc.want {
			t.Errorf("%s: AgeAt=%d want %d", tc.name, got, tc.want)
		}
	}
}

func TestProfileActive(t *testing.T) {
	p := &Profile{}
	if p.Active() {
		t.Fatal("inactive profile reported active")
	}
	p.SocialActive = true
	if !p.Active() {
		t.Fatal("social-only profile should be active")
	}
	p.SocialActive = false
	p.DatingActive = true
	if !p.Active() {
		t.Fatal("dating-only profile should be active")
	}
}

func TestPreferredListsDecode(t *testing.T) {
	p := &Profile{
		PrefGenders:  datatypes.JSON(`["female","nonbinary"]`),
		PrefChildren: datatypes.JSON(`["no_children"]`),
	}
	g := p.PreferredGenders()
	if len(g) != 2 || g[0] != GenderFemale || g[1] != GenderNonBinary {
		t.Fatalf("genders: %v", g)
	}
	c := p.PreferredChildren()
	if len(c) != 1 || c[0] != ChildrenNone {
		t.Fatalf("children: %v", c)
	}

	empty := &Profile{}
	if got := empty.PreferredGenders(); got != nil {
		t.Fatalf("empty genders: %v", got)
	}
}
