package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	GenderFemale    = "female"
	GenderMale      = "male"
	GenderNonBinary = "nonbinary"
)

const (
	ChildrenNone  = "no_children"
	ChildrenHas   = "has_children"
	ChildrenWants = "wants_children"
)

const (
	PrefAgeMinDefault = 18
	PrefAgeMaxDefault = 99
)

// Profile is the interacting actor, distinct from the auth account. The two
// activity scopes toggle independently; Active() derives the overall flag.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:account_id" json:"-"`

	DisplayName string `gorm:"size:80;not null;column:display_name" json:"display_name"`
	Bio         string `gorm:"column:bio" json:"bio"`

	SocialActive bool `gorm:"not null;default:false;column:social_active" json:"social_active"`
	DatingActive bool `gorm:"not null;default:false;column:dating_active" json:"dating_active"`

	Birthday    *time.Time `gorm:"column:birthday" json:"birthday,omitempty"`
	Gender      *string    `gorm:"size:32;column:gender" json:"gender,omitempty"`
	OwnChildren *string    `gorm:"size:32;column:own_children" json:"own_children,omitempty"`

	PrefAgeMin   *int           `gorm:"column:pref_age_min" json:"pref_age_min,omitempty"`
	PrefAgeMax   *int           `gorm:"column:pref_age_max" json:"pref_age_max,omitempty"`
	PrefGenders  datatypes.JSON `gorm:"type:jsonb;column:pref_genders" json:"pref_genders,omitempty"`
	PrefChildren datatypes.JSON `gorm:"type:jsonb;column:pref_children" json:"pref_children,omitempty"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	Country   string   `gorm:"size:2;column:country" json:"country"`
	City      string   `gorm:"size:120;column:city" json:"city"`

	AvatarMediaKey string `gorm:"column:avatar_media_key" json:"-"`
	AvatarURL      string `gorm:"column:avatar_url" json:"avatar_url"`
	AvatarColor    string `gorm:"size:7;column:avatar_color" json:"avatar_color"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

func (p *Profile) Active() bool {
	return p.SocialActive || p.DatingActive
}

func (p *Profile) PreferredGenders() []string {
	return decodeStringList(p.PrefGenders)
}

func (p *Profile) PreferredChildren() []string {
	return decodeStringList(p.PrefChildren)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// AgeAt computes full years between birthday and now, subtracting one when
// the anniversary has not been reached yet this year.
func AgeAt(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}

// ProfileBlock is a directed block edge. A blocking B does not imply the
// reverse; the gate checks both directions.
type ProfileBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_pair,priority:1;column:blocker_id" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_pair,priority:2;index;column:blocked_id" json:"blocked_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProfileBlock) TableName() string { return "profile_block" }

type ProfileTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_tag,priority:1;column:profile_id" json:"profile_id"`
	Tag       string    `gorm:"size:64;not null;uniqueIndex:idx_profile_tag,priority:2;index;column:tag" json:"tag"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProfileTag) TableName() string { return "profile_tag" }

// SearchFilter is the viewer's stored social-discovery filter. No stored
// filter means no search, not "match everything".
type SearchFilter struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:profile_id" json:"profile_id"`
	Country   *string        `gorm:"size:2;column:country" json:"country,omitempty"`
	Tags      datatypes.JSON `gorm:"type:jsonb;column:tags" json:"tags,omitempty"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SearchFilter) TableName() string { return "search_filter" }

func (f *SearchFilter) TagList() []string {
	return decodeStringList(f.Tags)
}
