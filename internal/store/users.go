package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// FindByID returns the user or a NotFound error.
func (u *Users) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Take(&user, "id = ?", id).Error
	if err != nil {
		return models.User{}, translate(err, "User")
	}
	return user, nil
}

// Exists reports whether a user with id is still registered.
func (u *Users) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, translate(err, "User")
	}
	return n > 0, nil
}
