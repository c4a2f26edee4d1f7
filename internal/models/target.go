package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
)

// TargetKind names the kind of content a vote points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetPost, TargetComment:
		return TargetKind(s), nil
	default:
		return "", apperr.Validation("Invalid type. Must be 'post' or 'comment'.")
	}
}

// Target is a tagged reference to exactly one post or comment.
type Target struct {
	Kind TargetKind
	ID   uuid.UUID
}

// ParseTarget validates a kind and id pair as received from a client.
func ParseTarget(kind, id string) (Target, error) {
	k, err := ParseTargetKind(kind)
	if err != nil {
		return Target{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed == uuid.Nil {
		return Target{}, apperr.Validation("Invalid targetId %q.", id)
	}
	return Target{Kind: k, ID: parsed}, nil
}

// Table is the content table holding the target row.
func (t Target) Table() string {
	if t.Kind == TargetComment {
		return "comments"
	}
	return "posts"
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}
