// Package notify delivers user-facing events raised by content changes, such as
// a reply to someone's comment.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventKind string

const (
	EventPostComment  EventKind = "post_comment"
	EventCommentReply EventKind = "comment_reply"
)

// Event describes something that happened to content a user owns.
type Event struct {
	Kind      EventKind `json:"kind"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	PostID    uuid.UUID `json:"post_id"`
	CommentID uuid.UUID `json:"comment_id"`
}

// Text renders the event as a one-line human message.
func (e Event) Text() string {
	switch e.Kind {
	case EventCommentReply:
		return fmt.Sprintf("%s replied to your comment", e.ActorName)
	case EventPostComment:
		return fmt.Sprintf("%s commented on your post", e.ActorName)
	}
	return fmt.Sprintf("%s interacted with your content", e.ActorName)
}

// Notifier sends an event to one user. Delivery failures never undo the
// change that raised the event.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event Event) error
}

// LogNotifier writes events to the log. It is the fallback when no SMS
// provider is configured.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, userID uuid.UUID, event Event) error {
	n.log.WithFields(logrus.Fields{
		"recipient":  userID,
		"kind":       event.Kind,
		"actor_id":   event.ActorID,
		"post_id":    event.PostID,
		"comment_id": event.CommentID,
	}).Info(event.Text())
	return nil
}
