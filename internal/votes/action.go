package votes

import (
	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

// Action is the verb a client sends when casting a vote.
type Action string

const (
	ActionUpvote   Action = "upvote"
	ActionDownvote Action = "downvote"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionUpvote, ActionDownvote:
		return Action(s), nil
	default:
		return "", apperr.Validation("Invalid action. Must be 'upvote' or 'downvote'.")
	}
}

// Value maps the action to the vote value it records.
func (a Action) Value() (models.VoteValue, error) {
	switch a {
	case ActionUpvote:
		return models.Upvote, nil
	case ActionDownvote:
		return models.Downvote, nil
	default:
		return 0, apperr.Validation("Invalid action. Must be 'upvote' or 'downvote'.")
	}
}

// Status reports which ledger transition a request took.
type Status string

const (
	StatusCreated   Status = "created"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusRemoved   Status = "removed"
)

func (s Status) Message() string {
	switch s {
	case StatusCreated:
		return "Vote created"
	case StatusUpdated:
		return "Vote updated"
	case StatusUnchanged:
		return "Vote unchanged"
	case StatusRemoved:
		return "Vote removed"
	}
	return string(s)
}

// decide picks the transition a cast takes from the user's current vote, if any.
// Casting the same value twice is a no-op, never a toggle.
func decide(current *models.Vote, value models.VoteValue) Status {
	switch {
	case current == nil:
		return StatusCreated
	case current.Value == value:
		return StatusUnchanged
	default:
		return StatusUpdated
	}
}
