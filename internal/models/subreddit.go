package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subreddit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	BannerURL   string    `json:"banner_url"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Subreddit) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleModerator Role = "MODERATOR"
)

// Membership is a user's subscription to a subreddit; moderators are members with an elevated role.
type Membership struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_subreddit,priority:1" json:"user_id"`
	SubredditID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_subreddit,priority:2;index" json:"subreddit_id"`
	Role        Role      `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`
	Subreddit   Subreddit `gorm:"foreignKey:SubredditID" json:"subreddit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *Membership) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type Ban struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bans_user_subreddit,priority:1" json:"user_id"`
	SubredditID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bans_user_subreddit,priority:2" json:"subreddit_id"`
	BannedByID  uuid.UUID `gorm:"type:uuid;not null" json:"banned_by_id"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Ban) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
