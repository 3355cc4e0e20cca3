package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a geo-tagged social post; discovery filters it through the same
// blocklist gate and bounding box as nearby profiles.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Body      string    `gorm:"not null;column:body" json:"body"`
	Latitude  *float64  `gorm:"index;column:latitude" json:"latitude,omitempty"`
	Longitude *float64  `gorm:"index;column:longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Post) TableName() string { return "post" }
