package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

// Row lock strengths for SELECT ... FOR <strength>.
const (
	lockUpdate = "UPDATE"
	lockShare  = "SHARE"
)

// TargetInfo is what authorization and the vote engine need to know about a post or comment.
type TargetInfo struct {
	Target      models.Target
	AuthorID    uuid.UUID
	PostID      uuid.UUID // the post itself, or the post a comment belongs to
	SubredditID uuid.UUID
	Karma       int
}

type targetRow struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID
	PostID      uuid.UUID
	SubredditID uuid.UUID
	Karma       int
}

// Targets resolves posts and comments inside the caller's transaction.
type Targets struct{}

func NewTargets() *Targets {
	return &Targets{}
}

// Find reads a post or comment without locking it.
func (t *Targets) Find(tx *gorm.DB, target models.Target) (TargetInfo, error) {
	return t.find(tx, target, "")
}

// Lock reads a post or comment with SELECT ... FOR UPDATE, holding its row until
// the transaction ends. Every karma writer and every delete takes this lock first.
func (t *Targets) Lock(tx *gorm.DB, target models.Target) (TargetInfo, error) {
	return t.find(tx, target, lockUpdate)
}

// Share reads a post or comment with SELECT ... FOR SHARE. Writers hanging rows
// off a target (comments on a post, replies to a comment) take it so a
// concurrent delete either waits for them or is seen to have won.
func (t *Targets) Share(tx *gorm.DB, target models.Target) (TargetInfo, error) {
	return t.find(tx, target, lockShare)
}

// LockPostComments locks every comment of a post FOR UPDATE and returns their
// ids. Hold the post's lock first so no comment can be added afterwards.
func (t *Targets) LockPostComments(tx *gorm.DB, postID uuid.UUID) ([]uuid.UUID, error) {
	return lockComments(tx.Where("post_id = ?", postID))
}

// LockThread locks a comment and all of its replies, at any depth, FOR UPDATE
// and returns their ids. Replies committed while it waits are picked up by
// walking the thread again until it stops growing.
func (t *Targets) LockThread(tx *gorm.DB, commentID uuid.UUID) ([]uuid.UUID, error) {
	var locked []uuid.UUID
	for {
		var thread []uuid.UUID
		err := tx.Raw(`
			WITH RECURSIVE thread AS (
				SELECT id FROM comments WHERE id = ?
				UNION ALL
				SELECT c.id FROM comments c JOIN thread t ON c.parent_id = t.id
			)
			SELECT id FROM thread`, commentID).Scan(&thread).Error
		if err != nil {
			return nil, apperr.Internal(err, "collect comment thread")
		}
		if len(thread) == 0 {
			return nil, notFound(models.TargetComment)
		}
		if len(thread) == len(locked) {
			return locked, nil
		}

		locked, err = lockComments(tx.Where("id IN ?", thread))
		if err != nil {
			return nil, err
		}
	}
}

func lockComments(q *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := q.Model(&models.Comment{}).
		Clauses(clause.Locking{Strength: lockUpdate}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperr.Internal(err, "lock comments")
	}
	return ids, nil
}

func (t *Targets) find(tx *gorm.DB, target models.Target, strength string) (TargetInfo, error) {
	var q *gorm.DB
	switch target.Kind {
	case models.TargetPost:
		q = tx.Table("posts").
			Select("id, author_id, id AS post_id, subreddit_id, karma").
			Where("id = ?", target.ID)
	case models.TargetComment:
		q = tx.Table("comments").
			Select("comments.id, comments.author_id, comments.post_id, posts.subreddit_id, comments.karma").
			Joins("JOIN posts ON posts.id = comments.post_id").
			Where("comments.id = ?", target.ID)
	default:
		return TargetInfo{}, apperr.Validation("Invalid type. Must be 'post' or 'comment'.")
	}

	if strength != "" {
		q = q.Clauses(clause.Locking{Strength: strength, Table: clause.Table{Name: target.Table()}})
	}

	var row targetRow
	res := q.Scan(&row)
	if res.Error != nil {
		return TargetInfo{}, apperr.Internal(res.Error, "query %s", target)
	}
	if res.RowsAffected == 0 {
		return TargetInfo{}, notFound(target.Kind)
	}

	return TargetInfo{
		Target:      target,
		AuthorID:    row.AuthorID,
		PostID:      row.PostID,
		SubredditID: row.SubredditID,
		Karma:       row.Karma,
	}, nil
}

func notFound(kind models.TargetKind) error {
	if kind == models.TargetComment {
		return apperr.NotFound("Comment not found")
	}
	return apperr.NotFound("Post not found")
}
