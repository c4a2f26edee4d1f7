package votes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/testutil"
)

func TestLedger_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	sub := testutil.CreateSubreddit(t, db, author, "golang")
	post := testutil.CreatePost(t, db, author, sub)
	target := models.Target{Kind: models.TargetPost, ID: post.ID}
	ledger := NewLedger()

	_, found, err := ledger.Find(db, voter.ID, target)
	require.NoError(t, err)
	assert.False(t, found)

	created, err := ledger.Create(db, voter.ID, target, models.Upvote)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, target, created.Target())

	vote, found, err := ledger.Find(db, voter.ID, target)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, vote.ID)
	assert.Equal(t, models.Upvote, vote.Value)

	updated, err := ledger.UpdateValue(db, voter.ID, target, models.Downvote)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, models.Downvote, updated.Value)

	require.NoError(t, ledger.Delete(db, voter.ID, target))
	assert.Equal(t, int64(0), testutil.CountVotes(t, db, target))
}

func TestLedger_DuplicateIsConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	author := testutil.CreateUser(t, db, "author")
	sub := testutil.CreateSubreddit(t, db, author, "golang")
	post := testutil.CreatePost(t, db, author, sub)
	target := models.Target{Kind: models.TargetPost, ID: post.ID}
	ledger := NewLedger()

	_, err := ledger.Create(db, author.ID, target, models.Upvote)
	require.NoError(t, err)

	_, err = ledger.Create(db, author.ID, target, models.Downvote)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, int64(1), testutil.CountVotes(t, db, target))
}

func TestLedger_MissingVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	author := testutil.CreateUser(t, db, "author")
	sub := testutil.CreateSubreddit(t, db, author, "golang")
	post := testutil.CreatePost(t, db, author, sub)
	target := models.Target{Kind: models.TargetPost, ID: post.ID}
	ledger := NewLedger()

	_, err := ledger.UpdateValue(db, author.ID, target, models.Upvote)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = ledger.Delete(db, author.ID, target)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLedger_RejectsInvalidValue(t *testing.T) {
	ledger := NewLedger()
	target := models.Target{Kind: models.TargetPost, ID: uuid.New()}

	// rejected before any query runs
	_, err := ledger.Create(nil, uuid.New(), target, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ledger.UpdateValue(nil, uuid.New(), target, 2)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLedger_DeleteAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	sub := testutil.CreateSubreddit(t, db, author, "golang")
	post := testutil.CreatePost(t, db, author, sub)
	c1 := testutil.CreateComment(t, db, author, post, nil)
	c2 := testutil.CreateComment(t, db, author, post, &c1)
	ledger := NewLedger()

	postTarget := models.Target{Kind: models.TargetPost, ID: post.ID}
	for _, target := range []models.Target{
		postTarget,
		{Kind: models.TargetComment, ID: c1.ID},
		{Kind: models.TargetComment, ID: c2.ID},
	} {
		_, err := ledger.Create(db, voter.ID, target, models.Upvote)
		require.NoError(t, err)
	}

	require.NoError(t, ledger.DeleteAll(db, models.TargetComment, c1.ID, c2.ID))
	require.NoError(t, ledger.DeleteAll(db, models.TargetComment))

	var remaining int64
	require.NoError(t, db.Model(&models.Vote{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
	assert.Equal(t, int64(1), testutil.CountVotes(t, db, postTarget))
}
