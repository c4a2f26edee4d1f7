package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

func TestEventText(t *testing.T) {
	assert.Equal(t, "alice replied to your comment", Event{Kind: EventCommentReply, ActorName: "alice"}.Text())
	assert.Equal(t, "bob commented on your post", Event{Kind: EventPostComment, ActorName: "bob"}.Text())
	assert.Equal(t, "eve interacted with your content", Event{ActorName: "eve"}.Text())
}

func TestLogNotifier(t *testing.T) {
	log, hook := test.NewNullLogger()
	recipient := uuid.New()
	event := Event{Kind: EventPostComment, ActorID: uuid.New(), ActorName: "bob", PostID: uuid.New()}

	require.NoError(t, NewLogNotifier(log).Notify(context.Background(), recipient, event))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "bob commented on your post", entry.Message)
	assert.Equal(t, recipient, entry.Data["recipient"])
	assert.Equal(t, EventPostComment, entry.Data["kind"])
}

type fakeUsers map[uuid.UUID]models.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	user, ok := f[id]
	if !ok {
		return models.User{}, apperr.NotFound("User not found")
	}
	return user, nil
}

type fakeMessages struct {
	sent []*twilioApi.CreateMessageParams
	err  error
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioNotifier(t *testing.T) {
	log, _ := test.NewNullLogger()
	withPhone := models.User{ID: uuid.New(), Username: "alice", Phone: "+15550001111"}
	withoutPhone := models.User{ID: uuid.New(), Username: "bob"}
	users := fakeUsers{withPhone.ID: withPhone, withoutPhone.ID: withoutPhone}
	event := Event{Kind: EventCommentReply, ActorName: "carol"}
	ctx := context.Background()

	api := &fakeMessages{}
	n := newTwilioNotifier(api, "+15559990000", users, log)

	require.NoError(t, n.Notify(ctx, withPhone.ID, event))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "+15550001111", *api.sent[0].To)
	assert.Equal(t, "+15559990000", *api.sent[0].From)
	assert.Equal(t, "carol replied to your comment", *api.sent[0].Body)

	require.NoError(t, n.Notify(ctx, withoutPhone.ID, event))
	assert.Len(t, api.sent, 1, "users without a phone are skipped")

	err := n.Notify(ctx, uuid.New(), event)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	failing := newTwilioNotifier(&fakeMessages{err: errors.New("rate limited")}, "+15559990000", users, log)
	assert.ErrorContains(t, failing.Notify(ctx, withPhone.ID, event), "rate limited")
}
