package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
)

func TestParseTarget(t *testing.T) {
	id := uuid.New()

	target, err := ParseTarget("post", id.String())
	require.NoError(t, err)
	assert.Equal(t, Target{Kind: TargetPost, ID: id}, target)
	assert.Equal(t, "posts", target.Table())

	target, err = ParseTarget("comment", id.String())
	require.NoError(t, err)
	assert.Equal(t, "comments", target.Table())
	assert.Equal(t, "comment:"+id.String(), target.String())
}

func TestParseTarget_Invalid(t *testing.T) {
	tests := []struct {
		name string
		kind string
		id   string
	}{
		{"unknown kind", "topic", uuid.NewString()},
		{"empty kind", "", uuid.NewString()},
		{"malformed id", "post", "not-a-uuid"},
		{"nil id", "comment", uuid.Nil.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTarget(tt.kind, tt.id)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestVoteValue(t *testing.T) {
	assert.True(t, Upvote.Valid())
	assert.True(t, Downvote.Valid())
	assert.False(t, VoteValue(0).Valid())
	assert.False(t, VoteValue(2).Valid())
}
