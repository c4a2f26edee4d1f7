package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

type UserHandler struct {
	db    *gorm.DB
	users *store.Users
	log   logrus.FieldLogger
}

func NewUserHandler(db *gorm.DB, users *store.Users, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{db: db, users: users, log: log}
}

// GetUserProfile returns a user's public profile and karma totals.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, err := paramID(c, "id", "user")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var totals struct {
		PostKarma    int
		CommentKarma int
	}
	err = h.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COALESCE(SUM(karma), 0) FROM posts WHERE author_id = ?) AS post_karma,
			(SELECT COALESCE(SUM(karma), 0) FROM comments WHERE author_id = ?) AS comment_karma`,
		userID, userID).Scan(&totals).Error
	if err != nil {
		respondError(c, h.log, apperr.Internal(err, "sum user karma"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user.Public(),
		"post_karma":    totals.PostKarma,
		"comment_karma": totals.CommentKarma,
	})
}

// GetUserPosts returns all posts by a specific user
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	userID, err := paramID(c, "id", "user")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var posts []models.Post
	err = h.db.WithContext(c.Request.Context()).
		Preload("Author").
		Where("author_id = ?", userID).
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		respondError(c, h.log, apperr.Internal(err, "list user posts"))
		return
	}

	c.JSON(http.StatusOK, newPostResponses(posts))
}

// UpdateProfile edits the caller's bio, avatar and phone. Omitted fields are kept;
// an empty string clears the field.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var input struct {
		Bio    *string `json:"bio" binding:"omitempty,max=300"`
		Avatar *string `json:"avatar" binding:"omitempty,max=2048"`
		Phone  *string `json:"phone" binding:"omitempty,max=16"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	updates := map[string]any{}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Avatar != nil {
		if *input.Avatar != "" && !isURL(*input.Avatar) {
			respondError(c, h.log, apperr.Validation("avatar must be a valid URL"))
			return
		}
		updates["avatar"] = *input.Avatar
	}
	if input.Phone != nil {
		if *input.Phone != "" && !isE164(*input.Phone) {
			respondError(c, h.log, apperr.Validation("phone must be an E.164 phone number"))
			return
		}
		updates["phone"] = *input.Phone
	}

	ctx := c.Request.Context()
	if len(updates) > 0 {
		res := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			respondError(c, h.log, apperr.Internal(res.Error, "update profile"))
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, h.log, apperr.NotFound("User not found"))
			return
		}
	}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
