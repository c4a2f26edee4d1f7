// Package testutil starts a throwaway PostgreSQL for integration tests and
// seeds the rows the vote engine needs.
package testutil

import (
	"context"
	"flag"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

const postgresImage = "postgres:16-alpine"

var (
	testDSN    string
	skipReason = "postgres container was not started; call testutil.RunWithPostgres from TestMain"
)

// Logger returns a logrus logger that discards output.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// RunWithPostgres starts one PostgreSQL container for the whole package, migrates
// it, runs the tests and tears the container down. Tests calling SetupTestDB are
// skipped in -short mode or when Docker is unavailable.
func RunWithPostgres(m *testing.M) int {
	flag.Parse()
	if testing.Short() {
		skipReason = "skipping postgres-backed test in -short mode"
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	ctr, err := startPostgres(ctx)
	cancel()
	if err != nil {
		skipReason = fmt.Sprintf("postgres container unavailable: %v", err)
		return m.Run()
	}
	defer func() { _ = testcontainers.TerminateContainer(ctr) }()

	dsn, err := ctr.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		skipReason = fmt.Sprintf("postgres connection string: %v", err)
		return m.Run()
	}

	db, err := database.Open(postgres.Open(dsn), Logger())
	if err == nil {
		err = database.Migrate(db)
	}
	if err != nil {
		skipReason = fmt.Sprintf("prepare test database: %v", err)
		return m.Run()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	testDSN = dsn
	return m.Run()
}

func startPostgres(ctx context.Context) (ctr *tcpostgres.PostgresContainer, err error) {
	// the docker provider panics when no daemon socket can be found
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	return tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("reddit_test"),
		tcpostgres.WithUsername("reddit"),
		tcpostgres.WithPassword("reddit"),
		tcpostgres.BasicWaitStrategies(),
	)
}

// SetupTestDB returns a connection to the package's PostgreSQL with every table emptied.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testDSN == "" {
		t.Skip(skipReason)
	}

	db, err := database.Open(postgres.Open(testDSN), Logger())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	err = db.Exec(`TRUNCATE votes, comments, posts, bans, memberships, subreddits, users CASCADE`).Error
	require.NoError(t, err, "clean tables")

	return db
}

// CreateUser inserts a user with a unique username and email.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s-%s@example.com", username, uuid.NewString()[:8]),
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error, "create user %s", username)
	return user
}

// CreateSubreddit inserts a subreddit and makes the creator its moderator.
func CreateSubreddit(t *testing.T, db *gorm.DB, creator models.User, name string) models.Subreddit {
	t.Helper()

	sub := models.Subreddit{Name: name, Description: "test subreddit", CreatorID: creator.ID}
	require.NoError(t, db.Create(&sub).Error, "create subreddit %s", name)

	membership := models.Membership{UserID: creator.ID, SubredditID: sub.ID, Role: models.RoleModerator}
	require.NoError(t, db.Create(&membership).Error, "create moderator membership")
	return sub
}

// CreatePost inserts a post with zero karma.
func CreatePost(t *testing.T, db *gorm.DB, author models.User, sub models.Subreddit) models.Post {
	t.Helper()

	post := models.Post{
		Title:       "A test post title",
		Content:     "Some test post content",
		AuthorID:    author.ID,
		SubredditID: sub.ID,
	}
	require.NoError(t, db.Create(&post).Error, "create post")
	return post
}

// CreateComment inserts a comment on post, optionally replying to parent.
func CreateComment(t *testing.T, db *gorm.DB, author models.User, post models.Post, parent *models.Comment) models.Comment {
	t.Helper()

	comment := models.Comment{Content: "a test comment", AuthorID: author.ID, PostID: post.ID}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(&comment).Error, "create comment")
	return comment
}

// Karma reads the stored karma of a post or comment.
func Karma(t *testing.T, db *gorm.DB, target models.Target) int {
	t.Helper()

	var karma int
	err := db.Table(target.Table()).Select("karma").Where("id = ?", target.ID).Scan(&karma).Error
	require.NoError(t, err)
	return karma
}

// CountVotes returns the number of ledger rows on target.
func CountVotes(t *testing.T, db *gorm.DB, target models.Target) int64 {
	t.Helper()

	var n int64
	err := db.Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Count(&n).Error
	require.NoError(t, err)
	return n
}

// Orphans counts votes whose target is gone and comments whose post or parent is gone.
func Orphans(t *testing.T, db *gorm.DB) (votes, comments int64) {
	t.Helper()

	err := db.Raw(`
		SELECT COUNT(*) FROM votes v
		WHERE (v.target_type = 'post' AND NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = v.target_id))
		   OR (v.target_type = 'comment' AND NOT EXISTS (SELECT 1 FROM comments c WHERE c.id = v.target_id))`).
		Scan(&votes).Error
	require.NoError(t, err)

	err = db.Raw(`
		SELECT COUNT(*) FROM comments c
		WHERE NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = c.post_id)
		   OR (c.parent_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM comments pc WHERE pc.id = c.parent_id))`).
		Scan(&comments).Error
	require.NoError(t, err)
	return votes, comments
}
