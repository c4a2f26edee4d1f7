package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/votes"
)

type PostHandler struct {
	db          *gorm.DB
	targets     *store.Targets
	memberships *store.Memberships
	ledger      *votes.Ledger
	log         logrus.FieldLogger
}

func NewPostHandler(db *gorm.DB, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		db:          db,
		targets:     store.NewTargets(),
		memberships: store.NewMemberships(),
		ledger:      votes.NewLedger(),
		log:         log,
	}
}

type postResponse struct {
	models.Post
	Author models.PublicUser `json:"author"`
}

func newPostResponses(posts []models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse{Post: p, Author: p.Author.Public()})
	}
	return out
}

// GetPosts lists posts newest first, optionally only those of ?subreddit=<id>.
func (h *PostHandler) GetPosts(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Preload("Author").Order("created_at desc")
	if raw := c.Query("subreddit"); raw != "" {
		subID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apperr.Validation("Invalid subreddit id"))
			return
		}
		q = q.Where("subreddit_id = ?", subID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		respondError(c, h.log, apperr.Internal(err, "list posts"))
		return
	}
	c.JSON(http.StatusOK, newPostResponses(posts))
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := paramID(c, "id", "post")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	post, err := findPost(h.db.WithContext(c.Request.Context()), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: post, Author: post.Author.Public()})
}

// CreatePost creates a post in the subreddit named by :id. Banned users are refused.
func (h *PostHandler) CreatePost(c *gin.Context) {
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

	var input struct {
		Title   string `json:"title" binding:"required,min=8,max=300"`
		Content string `json:"content" binding:"required,min=8,max=40000"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	post := models.Post{
		Title:       input.Title,
		Content:     input.Content,
		AuthorID:    userID,
		SubredditID: subID,
	}
	db := h.db.WithContext(c.Request.Context())
	err = db.Transaction(func(tx *gorm.DB) error {
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
		if err := tx.Create(&post).Error; err != nil {
			return apperr.Internal(err, "create post")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Reload with author information
	post, err = findPost(db, post.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, postResponse{Post: post, Author: post.Author.Public()})
}

// UpdatePost edits the title or content (author only).
func (h *PostHandler) UpdatePost(c *gin.Context) {
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
		Title   *string `json:"title" binding:"omitempty,min=8,max=300"`
		Content *string `json:"content" binding:"omitempty,min=8,max=40000"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	info, err := h.targets.Find(db, models.Target{Kind: models.TargetPost, ID: postID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if info.AuthorID != userID {
		respondError(c, h.log, apperr.Forbidden("You can only edit your own posts"))
		return
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Post{}).Where("id = ?", postID).Updates(updates).Error; err != nil {
			respondError(c, h.log, apperr.Internal(err, "update post"))
			return
		}
	}

	post, err := findPost(db, postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: post, Author: post.Author.Public()})
}

// DeletePost deletes a post with its comments and every vote on them. The
// author and the subreddit's moderators may delete.
func (h *PostHandler) DeletePost(c *gin.Context) {
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

	target := models.Target{Kind: models.TargetPost, ID: postID}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		info, err := h.targets.Lock(tx, target)
		if err != nil {
			return err
		}
		if err := authorOrModerator(tx, h.memberships, userID, info); err != nil {
			return err
		}

		// votes racing this delete wait on the comment locks, so DeleteAll sees them
		commentIDs, err := h.targets.LockPostComments(tx, postID)
		if err != nil {
			return err
		}
		if err := h.ledger.DeleteAll(tx, models.TargetComment, commentIDs...); err != nil {
			return err
		}
		if err := h.ledger.DeleteAll(tx, models.TargetPost, postID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return apperr.Internal(err, "delete post comments")
		}
		if err := tx.Delete(&models.Post{}, "id = ?", postID).Error; err != nil {
			return apperr.Internal(err, "delete post")
		}
		return nil
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// authorOrModerator allows the target's author or a moderator of its subreddit.
func authorOrModerator(tx *gorm.DB, memberships *store.Memberships, userID uuid.UUID, info store.TargetInfo) error {
	if info.AuthorID == userID {
		return nil
	}
	isMod, err := memberships.IsModerator(tx, userID, info.SubredditID)
	if err != nil {
		return err
	}
	if !isMod {
		return apperr.Forbidden("Only the author or a moderator can delete this %s", info.Target.Kind)
	}
	return nil
}

func findPost(db *gorm.DB, id uuid.UUID) (models.Post, error) {
	var post models.Post
	if err := db.Preload("Author").Take(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, apperr.NotFound("Post not found")
		}
		return models.Post{}, apperr.Internal(err, "find post")
	}
	return post, nil
}
