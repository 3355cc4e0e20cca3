package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the authentication identity owning exactly one Profile.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:128;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	Locale    string    `gorm:"size:8;not null;default:en;column:locale" json:"locale"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Account) TableName() string { return "account" }

type AccountToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null;index;column:account_id" json:"account_id"`
	ProfileID    uuid.UUID `gorm:"type:uuid;not null;column:profile_id" json:"profile_id"`
	AccessToken  string    `gorm:"not null;index;column:access_token" json:"-"`
	RefreshToken string    `gorm:"not null;index;column:refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AccountToken) TableName() string { return "account_token" }
