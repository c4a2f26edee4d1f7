package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

var subredditName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type SubredditHandler struct {
	db          *gorm.DB
	memberships *store.Memberships
	log         logrus.FieldLogger
}

func NewSubredditHandler(db *gorm.DB, log logrus.FieldLogger) *SubredditHandler {
	return &SubredditHandler{db: db, memberships: store.NewMemberships(), log: log}
}

type subredditResponse struct {
	models.Subreddit
	MemberCount int64 `json:"member_count"`
}

// CreateSubreddit creates a subreddit and makes the caller its first moderator.
func (h *SubredditHandler) CreateSubreddit(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var input struct {
		Name        string `json:"name" binding:"required,min=3,max=21"`
		Description string `json:"description" binding:"max=500"`
		BannerURL   string `json:"banner_url" binding:"omitempty,url"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	if !subredditName.MatchString(input.Name) {
		respondError(c, h.log, apperr.Validation("name may only contain letters, digits and underscores"))
		return
	}

	sub := models.Subreddit{
		Name:        input.Name,
		Description: input.Description,
		BannerURL:   input.BannerURL,
		CreatorID:   userID,
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict(err, "Subreddit name already taken")
			}
			return apperr.Internal(err, "create subreddit")
		}
		mod := models.Membership{UserID: userID, SubredditID: sub.ID, Role: models.RoleModerator}
		if err := tx.Create(&mod).Error; err != nil {
			return apperr.Internal(err, "create moderator membership")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, subredditResponse{Subreddit: sub, MemberCount: 1})
}

// GetSubreddits lists subreddits, optionally filtered by ?query= on the name.
func (h *SubredditHandler) GetSubreddits(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Order("name")
	if query := strings.TrimSpace(c.Query("query")); query != "" {
		q = q.Where("name ILIKE ?", "%"+escapeLike(query)+"%")
	}

	var subs []models.Subreddit
	if err := q.Find(&subs).Error; err != nil {
		respondError(c, h.log, apperr.Internal(err, "list subreddits"))
		return
	}
	if subs == nil {
		subs = []models.Subreddit{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubredditHandler) GetSubreddit(c *gin.Context) {
	subID, err := paramID(c, "id", "subreddit")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	sub, err := findSubreddit(db, subID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var members int64
	if err := db.Model(&models.Membership{}).Where("subreddit_id = ?", subID).Count(&members).Error; err != nil {
		respondError(c, h.log, apperr.Internal(err, "count members"))
		return
	}

	c.JSON(http.StatusOK, subredditResponse{Subreddit: sub, MemberCount: members})
}

// UpdateSubreddit edits the description and banner (moderators only).
func (h *SubredditHandler) UpdateSubreddit(c *gin.Context) {
	_, subID, ok := h.moderatorRequest(c)
	if !ok {
		return
	}

	var input struct {
		Description *string `json:"description" binding:"omitempty,max=500"`
		BannerURL   *string `json:"banner_url"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	updates := map[string]any{}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.BannerURL != nil {
		if *input.BannerURL != "" && !isURL(*input.BannerURL) {
			respondError(c, h.log, apperr.Validation("banner_url must be a valid URL"))
			return
		}
		updates["banner_url"] = *input.BannerURL
	}

	db := h.db.WithContext(c.Request.Context())
	if len(updates) > 0 {
		if err := db.Model(&models.Subreddit{}).Where("id = ?", subID).Updates(updates).Error; err != nil {
			respondError(c, h.log, apperr.Internal(err, "update subreddit"))
			return
		}
	}

	sub, err := findSubreddit(db, subID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Subscribe makes the caller a member. Banned users cannot subscribe.
func (h *SubredditHandler) Subscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	subID, err := paramID(c, "id", "subreddit")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if _, err := findSubreddit(tx, subID); err != nil {
			return err
		}
		banned, err := h.memberships.IsBanned(tx, userID, subID)
		if err != nil {
			return err
		}
		if banned {
			return apperr.Forbidden("You are banned from this subreddit")
		}
		membership := models.Membership{UserID: userID, SubredditID: subID, Role: models.RoleMember}
		if err := tx.Create(&membership).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict(err, "Already subscribed")
			}
			return apperr.Internal(err, "create membership")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
}

// Unsubscribe removes the caller's membership. The creator cannot leave.
func (h *SubredditHandler) Unsubscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	subID, err := paramID(c, "id", "subreddit")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		sub, err := findSubreddit(tx, subID)
		if err != nil {
			return err
		}
		if sub.CreatorID == userID {
			return apperr.Forbidden("The creator cannot leave the subreddit")
		}
		res := tx.Where("user_id = ? AND subreddit_id = ?", userID, subID).Delete(&models.Membership{})
		if res.Error != nil {
			return apperr.Internal(res.Error, "delete membership")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Not subscribed")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

// GetSubscriptions lists the subreddits the caller belongs to, with their role.
func (h *SubredditHandler) GetSubscriptions(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var memberships []models.Membership
	err = h.db.WithContext(c.Request.Context()).
		Preload("Subreddit").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&memberships).Error
	if err != nil {
		respondError(c, h.log, apperr.Internal(err, "list subscriptions"))
		return
	}
	if memberships == nil {
		memberships = []models.Membership{}
	}
	c.JSON(http.StatusOK, memberships)
}

// AddModerator promotes a user to moderator, subscribing them if needed.
func (h *SubredditHandler) AddModerator(c *gin.Context) {
	_, subID, ok := h.moderatorRequest(c)
	if !ok {
		return
	}

	var input struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	targetID, err := uuid.Parse(input.UserID)
	if err != nil {
		respondError(c, h.log, apperr.Validation("Invalid user id"))
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, targetID); err != nil {
			return err
		}
		banned, err := h.memberships.IsBanned(tx, targetID, subID)
		if err != nil {
			return err
		}
		if banned {
			return apperr.Forbidden("Banned users cannot be moderators")
		}
		membership := models.Membership{UserID: targetID, SubredditID: subID, Role: models.RoleModerator}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "subreddit_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).Create(&membership).Error
		if err != nil {
			return apperr.Internal(err, "assign moderator")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Moderator added"})
}

// RemoveModerator demotes a moderator to member. The creator cannot be demoted.
func (h *SubredditHandler) RemoveModerator(c *gin.Context) {
	_, subID, ok := h.moderatorRequest(c)
	if !ok {
		return
	}
	targetID, err := paramID(c, "userId", "user")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		sub, err := findSubreddit(tx, subID)
		if err != nil {
			return err
		}
		if sub.CreatorID == targetID {
			return apperr.Forbidden("The creator cannot be demoted")
		}
		res := tx.Model(&models.Membership{}).
			Where("user_id = ? AND subreddit_id = ? AND role = ?", targetID, subID, models.RoleModerator).
			Update("role", models.RoleMember)
		if res.Error != nil {
			return apperr.Internal(res.Error, "demote moderator")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Moderator not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Moderator removed"})
}

// BanUser bans a user from the subreddit and drops their membership.
// Moderators cannot be banned.
func (h *SubredditHandler) BanUser(c *gin.Context) {
	modID, subID, ok := h.moderatorRequest(c)
	if !ok {
		return
	}

	var input struct {
		UserID string `json:"userId" binding:"required"`
		Reason string `json:"reason" binding:"max=300"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	targetID, err := uuid.Parse(input.UserID)
	if err != nil {
		respondError(c, h.log, apperr.Validation("Invalid user id"))
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, targetID); err != nil {
			return err
		}
		isMod, err := h.memberships.IsModerator(tx, targetID, subID)
		if err != nil {
			return err
		}
		if isMod {
			return apperr.Forbidden("Moderators cannot be banned")
		}

		ban := models.Ban{UserID: targetID, SubredditID: subID, BannedByID: modID, Reason: input.Reason}
		if err := tx.Create(&ban).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict(err, "User is already banned")
			}
			return apperr.Internal(err, "create ban")
		}
		err = tx.Where("user_id = ? AND subreddit_id = ?", targetID, subID).Delete(&models.Membership{}).Error
		if err != nil {
			return apperr.Internal(err, "drop banned membership")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User banned"})
}

func (h *SubredditHandler) UnbanUser(c *gin.Context) {
	_, subID, ok := h.moderatorRequest(c)
	if !ok {
		return
	}
	targetID, err := paramID(c, "userId", "user")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND subreddit_id = ?", targetID, subID).
		Delete(&models.Ban{})
	if res.Error != nil {
		respondError(c, h.log, apperr.Internal(res.Error, "delete ban"))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.log, apperr.NotFound("Ban not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unbanned"})
}

// moderatorRequest authenticates the caller and checks they moderate the
// subreddit in the :id path parameter. It writes the error response itself.
func (h *SubredditHandler) moderatorRequest(c *gin.Context) (userID, subID uuid.UUID, ok bool) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	subID, err = paramID(c, "id", "subreddit")
	if err != nil {
		respondError(c, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}

	db := h.db.WithContext(c.Request.Context())
	if _, err := findSubreddit(db, subID); err != nil {
		respondError(c, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	isMod, err := h.memberships.IsModerator(db, userID, subID)
	if err != nil {
		respondError(c, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	if !isMod {
		respondError(c, h.log, apperr.Forbidden("Only moderators can do this"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, subID, true
}

func findSubreddit(db *gorm.DB, id uuid.UUID) (models.Subreddit, error) {
	var sub models.Subreddit
	if err := db.Take(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subreddit{}, apperr.NotFound("Subreddit not found")
		}
		return models.Subreddit{}, apperr.Internal(err, "find subreddit")
	}
	return sub, nil
}

func requireUser(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal(err, "find user")
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
