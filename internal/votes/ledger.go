package votes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

// Ledger is the authoritative record of who voted what. It never touches karma;
// callers recompute through the Aggregator after a write.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

func byKey(tx *gorm.DB, userID uuid.UUID, target models.Target) *gorm.DB {
	return tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Kind, target.ID)
}

// Find returns the user's vote on target; found is false when there is none.
func (l *Ledger) Find(tx *gorm.DB, userID uuid.UUID, target models.Target) (vote models.Vote, found bool, err error) {
	res := byKey(tx, userID, target).Limit(1).Find(&vote)
	if res.Error != nil {
		return models.Vote{}, false, apperr.Internal(res.Error, "find vote on %s", target)
	}
	return vote, res.RowsAffected > 0, nil
}

// Create records a new vote. The unique index on (user_id, target_type, target_id)
// is the final guard: a concurrent insert surfaces as a Conflict error.
func (l *Ledger) Create(tx *gorm.DB, userID uuid.UUID, target models.Target, value models.VoteValue) (models.Vote, error) {
	if !value.Valid() {
		return models.Vote{}, apperr.Validation("Invalid vote value %d.", value)
	}

	vote := models.Vote{
		UserID:     userID,
		TargetType: target.Kind,
		TargetID:   target.ID,
		Value:      value,
	}
	if err := tx.Create(&vote).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.Vote{}, apperr.Conflict(err, "Vote already exists")
		}
		return models.Vote{}, apperr.Internal(err, "create vote on %s", target)
	}
	return vote, nil
}

// UpdateValue overwrites the value of an existing vote.
func (l *Ledger) UpdateValue(tx *gorm.DB, userID uuid.UUID, target models.Target, value models.VoteValue) (models.Vote, error) {
	if !value.Valid() {
		return models.Vote{}, apperr.Validation("Invalid vote value %d.", value)
	}

	res := byKey(tx.Model(&models.Vote{}), userID, target).Update("value", value)
	if res.Error != nil {
		return models.Vote{}, apperr.Internal(res.Error, "update vote on %s", target)
	}
	if res.RowsAffected == 0 {
		return models.Vote{}, apperr.NotFound("Vote not found")
	}

	vote, _, err := l.Find(tx, userID, target)
	return vote, err
}

// Delete removes the user's vote. Deleting a vote that does not exist is an error.
func (l *Ledger) Delete(tx *gorm.DB, userID uuid.UUID, target models.Target) error {
	res := byKey(tx, userID, target).Delete(&models.Vote{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "delete vote on %s", target)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Vote not found")
	}
	return nil
}

// DeleteAll drops every vote on the given targets. The content store calls it in
// the same transaction that deletes the targets themselves.
func (l *Ledger) DeleteAll(tx *gorm.DB, kind models.TargetKind, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Where("target_type = ? AND target_id IN ?", kind, ids).Delete(&models.Vote{}).Error
	if err != nil {
		return apperr.Internal(err, "delete votes on %d %ss", len(ids), kind)
	}
	return nil
}
