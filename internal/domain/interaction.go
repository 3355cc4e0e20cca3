package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EdgeKindLike = "LIKE"
	EdgeKindPass = "PASS"
)

// InteractionEdge is a directed like/pass record. At most one row exists per
// (from, to); a new action of a different kind supersedes the old one. A
// match is never stored: it exists iff both directions hold a LIKE.
type InteractionEdge struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_edge_pair,priority:1;column:from_profile_id" json:"from_profile_id"`
	ToProfileID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_edge_pair,priority:2;index;column:to_profile_id" json:"to_profile_id"`
	Kind          string    `gorm:"size:8;not null;column:kind" json:"kind"`

	// SeenAt: the recipient has viewed this incoming like.
	// MatchSeenAt: the edge's author has acknowledged the resulting match.
	SeenAt      *time.Time `gorm:"column:seen_at" json:"seen_at,omitempty"`
	MatchSeenAt *time.Time `gorm:"column:match_seen_at" json:"match_seen_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (InteractionEdge) TableName() string { return "interaction_edge" }

func (e *InteractionEdge) IsLike() bool { return e.Kind == EdgeKindLike }
