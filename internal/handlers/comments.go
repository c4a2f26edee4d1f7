package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/notify"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/votes"
)

type CommentHandler struct {
	db          *gorm.DB
	users       *store.Users
	targets     *store.Targets
	memberships *store.Memberships
	ledger      *votes.Ledger
	notifier    notify.Notifier
	log         logrus.FieldLogger
}

func NewCommentHandler(db *gorm.DB, users *store.Users, notifier notify.Notifier, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		db:          db,
		users:       users,
		targets:     store.NewTargets(),
		memberships: store.NewMemberships(),
		ledger:      votes.NewLedger(),
		notifier:    notifier,
		log:         log,
	}
}

type commentResponse struct {
	models.Comment
	Author models.PublicUser `json:"author"`
}

// GetComments returns all comments of a post, oldest first. Clients thread
// them by parent_id.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, err := paramID(c, "id", "post")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if _, err := h.targets.Find(db, models.Target{Kind: models.TargetPost, ID: postID}); err != nil {
		respondError(c, h.log, err)
		return
	}

	var comments []models.Comment
	if err := db.Preload("Author").Where("post_id = ?", postID).Order("created_at").Find(&comments).Error; err != nil {
		respondError(c, h.log, apperr.Internal(err, "list comments"))
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, commentResponse{Comment: comment, Author: comment.Author.Public()})
	}
	c.JSON(http.StatusOK, out)
}

// CreateComment creates a comment on a post, optionally replying to parentId,
// and notifies the author of whatever was replied to.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	postID, err := paramID(c, "id", "post")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var input struct {
		Content  string `json:"content" binding:"required,min=1,max=10000"`
		ParentID string `json:"parentId"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	comment := models.Comment{Content: input.Content, AuthorID: userID, PostID: postID}
	event := notify.Event{Kind: notify.EventPostComment, ActorID: userID, PostID: postID}
	var recipient uuid.UUID

	ctx := c.Request.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// shared locks keep a concurrent delete from leaving this comment orphaned
		post, err := h.targets.Share(tx, models.Target{Kind: models.TargetPost, ID: postID})
		if err != nil {
			return err
		}
		banned, err := h.memberships.IsBanned(tx, userID, post.SubredditID)
		if err != nil {
			return err
		}
		if banned {
			return apperr.Forbidden("You are banned from this subreddit")
		}
		recipient = post.AuthorID

		if input.ParentID != "" {
			parentID, err := uuid.Parse(input.ParentID)
			if err != nil {
				return apperr.Validation("Invalid parentId %q.", input.ParentID)
			}
			parent, err := h.targets.Share(tx, models.Target{Kind: models.TargetComment, ID: parentID})
			if err != nil {
				return err
			}
			if parent.PostID != postID {
				return apperr.Validation("Parent comment belongs to another post")
			}
			comment.ParentID = &parentID
			recipient = parent.AuthorID
			event.Kind = notify.EventCommentReply
		}

		if err := tx.Create(&comment).Error; err != nil {
			return apperr.Internal(err, "create comment")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	author, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comment.Author = author

	if recipient != userID {
		event.CommentID = comment.ID
		event.ActorName = author.Username
		h.notify(ctx, recipient, event)
	}

	c.JSON(http.StatusCreated, commentResponse{Comment: comment, Author: author.Public()})
}

func (h *CommentHandler) notify(ctx context.Context, recipient uuid.UUID, event notify.Event) {
	if err := h.notifier.Notify(ctx, recipient, event); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"recipient": recipient,
			"kind":      event.Kind,
		}).Warn("notification failed")
	}
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	commentID, err := paramID(c, "id", "comment")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var input struct {
		Content string `json:"content" binding:"required,min=1,max=10000"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	info, err := h.targets.Find(db, models.Target{Kind: models.TargetComment, ID: commentID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if info.AuthorID != userID {
		respondError(c, h.log, apperr.Forbidden("You can only edit your own comments"))
		return
	}

	if err := db.Model(&models.Comment{}).Where("id = ?", commentID).Update("content", input.Content).Error; err != nil {
		respondError(c, h.log, apperr.Internal(err, "update comment"))
		return
	}

	var comment models.Comment
	if err := db.Preload("Author").Take(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, h.log, apperr.NotFound("Comment not found"))
			return
		}
		respondError(c, h.log, apperr.Internal(err, "reload comment"))
		return
	}
	c.JSON(http.StatusOK, commentResponse{Comment: comment, Author: comment.Author.Public()})
}

// DeleteComment deletes a comment, its replies and every vote on them. The
// author and the subreddit's moderators may delete.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	commentID, err := paramID(c, "id", "comment")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		info, err := h.targets.Lock(tx, models.Target{Kind: models.TargetComment, ID: commentID})
		if err != nil {
			return err
		}
		if err := authorOrModerator(tx, h.memberships, userID, info); err != nil {
			return err
		}

		thread, err := h.targets.LockThread(tx, commentID)
		if err != nil {
			return err
		}

		if err := h.ledger.DeleteAll(tx, models.TargetComment, thread...); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", thread).Delete(&models.Comment{}).Error; err != nil {
			return apperr.Internal(err, "delete comment thread")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
