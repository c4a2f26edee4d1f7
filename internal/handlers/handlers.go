package handlers

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/auth"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/notify"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

// Deps are the collaborators the handlers are built from.
type Deps struct {
	DB           *gorm.DB
	Tokens       *auth.TokenManager
	Revocations  auth.Revocations
	Notifier     notify.Notifier
	Votes        VoteService
	Log          logrus.FieldLogger
	CookieSecure bool
}

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Subreddit *SubredditHandler
	Post      *PostHandler
	Comment   *CommentHandler
	Vote      *VoteHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	users := store.NewUsers(d.DB)

	return &Handler{
		Auth:      NewAuthHandler(d.DB, users, d.Tokens, d.Revocations, d.CookieSecure, d.Log),
		User:      NewUserHandler(d.DB, users, d.Log),
		Subreddit: NewSubredditHandler(d.DB, d.Log),
		Post:      NewPostHandler(d.DB, d.Log),
		Comment:   NewCommentHandler(d.DB, users, d.Notifier, d.Log),
		Vote:      NewVoteHandler(d.Votes, d.Log),
	}
}
