package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteValue is the signed weight of a vote. There is no neutral value: a user
// without a vote on a target has no row.
type VoteValue int

const (
	Downvote VoteValue = -1
	Upvote   VoteValue = 1
)

func (v VoteValue) Valid() bool {
	return v == Upvote || v == Downvote
}

// Vote is one user's vote on one post or comment.
type Vote struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target,priority:1" json:"user_id"`
	TargetType TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_votes_user_target,priority:2;index:idx_votes_target,priority:1;check:chk_votes_target_type,target_type IN ('post', 'comment')" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target,priority:3;index:idx_votes_target,priority:2" json:"target_id"`
	Value      VoteValue  `gorm:"not null;check:chk_votes_value,value IN (-1, 1)" json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v Vote) Target() Target {
	return Target{Kind: v.TargetType, ID: v.TargetID}
}
