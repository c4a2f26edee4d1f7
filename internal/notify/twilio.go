package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/config"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
)

// Recipients resolves the user an event is addressed to.
type Recipients interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// MessageCreator is the part of the Twilio REST API the notifier calls.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier texts events to users who saved a phone number. Users without
// one are skipped silently.
type TwilioNotifier struct {
	api   MessageCreator
	from  string
	users Recipients
	log   logrus.FieldLogger
}

func NewTwilioNotifier(cfg config.Twilio, users Recipients, log logrus.FieldLogger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioNotifier(client.Api, cfg.FromNumber, users, log)
}

func newTwilioNotifier(api MessageCreator, from string, users Recipients, log logrus.FieldLogger) *TwilioNotifier {
	return &TwilioNotifier{api: api, from: from, users: users, log: log}
}

func (n *TwilioNotifier) Notify(ctx context.Context, userID uuid.UUID, event Event) error {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", userID, err)
	}
	if user.Phone == "" {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(user.Phone)
	params.SetFrom(n.from)
	params.SetBody(event.Text())

	msg, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms to %s: %w", userID, err)
	}

	entry := n.log.WithFields(logrus.Fields{"recipient": userID, "kind": event.Kind})
	if msg != nil && msg.Sid != nil {
		entry = entry.WithField("sid", *msg.Sid)
	}
	entry.Debug("sms notification sent")
	return nil
}
