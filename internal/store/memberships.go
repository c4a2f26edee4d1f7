package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

// Memberships answers the role and ban predicates of a subreddit.
type Memberships struct{}

func NewMemberships() *Memberships {
	return &Memberships{}
}

// Role returns the user's role in the subreddit; ok is false when the user is not a member.
func (m *Memberships) Role(tx *gorm.DB, userID, subredditID uuid.UUID) (role models.Role, ok bool, err error) {
	var membership models.Membership
	res := tx.Where("user_id = ? AND subreddit_id = ?", userID, subredditID).Limit(1).Find(&membership)
	if res.Error != nil {
		return "", false, translate(res.Error, "Membership")
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return membership.Role, true, nil
}

func (m *Memberships) IsModerator(tx *gorm.DB, userID, subredditID uuid.UUID) (bool, error) {
	role, ok, err := m.Role(tx, userID, subredditID)
	if err != nil {
		return false, err
	}
	return ok && role == models.RoleModerator, nil
}

func (m *Memberships) IsBanned(tx *gorm.DB, userID, subredditID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&models.Ban{}).
		Where("user_id = ? AND subreddit_id = ?", userID, subredditID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "Ban")
	}
	return n > 0, nil
}
