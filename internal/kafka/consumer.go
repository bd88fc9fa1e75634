package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
)

// Dispatcher is the trigger surface the consumer drives.
// *dispatch.Dispatcher satisfies it.
type Dispatcher interface {
	MessageReceived(ctx context.Context, recipientID, senderID, preview string) error
	EventCreated(ctx context.Context, ev *model.Event, recipients []string) error
	PostCreated(ctx context.Context, kind model.Kind, postID, authorID, title string, recipients []string) error
	InterestToggled(ctx context.Context, ev *model.Event, actorID string, added bool) error
	UserJoined(ctx context.Context, ownerID, joinerID, groupName string) error
	AdminBroadcast(ctx context.Context, kind model.Kind, title, message string, recipients []string) error
}

// Action is a collaborator event read from the actions topic.
type Action struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ActionMessageSent     = "message.sent"
	ActionEventCreated    = "event.created"
	ActionPostCreated     = "post.created"
	ActionInterestToggled = "interest.toggled"
	ActionUserJoined      = "user.joined"
	ActionAdminBroadcast  = "admin.broadcast"
)

var errUnknownAction = errors.New("unknown action type")

type Consumer struct {
	reader     *kafkago.Reader
	dispatcher Dispatcher
	logger     *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, d Dispatcher, logger *zap.SugaredLogger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, dispatcher: d, logger: logger}
}

// Start consumes until ctx is cancelled. Malformed or unknown actions are
// logged and skipped; read errors back off and continue.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warnw("kafka read error", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if err := Apply(ctx, c.dispatcher, m.Value); err != nil {
			c.logger.Warnw("action skipped", "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Apply decodes one action and invokes the matching dispatch trigger.
func Apply(ctx context.Context, d Dispatcher, raw []byte) error {
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}

	switch a.Type {
	case ActionMessageSent:
		var p struct {
			RecipientID string `json:"recipient_id"`
			SenderID    string `json:"sender_id"`
			Preview     string `json:"preview"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		return d.MessageReceived(ctx, p.RecipientID, p.SenderID, p.Preview)

	case ActionEventCreated:
		var p struct {
			Event      model.Event `json:"event"`
			Recipients []string    `json:"recipients"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		return d.EventCreated(ctx, &p.Event, p.Recipients)

	case ActionPostCreated:
		var p struct {
			Category   string   `json:"category"`
			PostID     string   `json:"post_id"`
			AuthorID   string   `json:"author_id"`
			Title      string   `json:"title"`
			Recipients []string `json:"recipients"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		kind := model.KindListingCreated
		if p.Category == "housing" {
			kind = model.KindHousingCreated
		}
		return d.PostCreated(ctx, kind, p.PostID, p.AuthorID, p.Title, p.Recipients)

	case ActionInterestToggled:
		var p struct {
			Event   model.Event `json:"event"`
			ActorID string      `json:"actor_id"`
			Added   bool        `json:"added"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		return d.InterestToggled(ctx, &p.Event, p.ActorID, p.Added)

	case ActionUserJoined:
		var p struct {
			OwnerID   string `json:"owner_id"`
			JoinerID  string `json:"joiner_id"`
			GroupName string `json:"group_name"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		return d.UserJoined(ctx, p.OwnerID, p.JoinerID, p.GroupName)

	case ActionAdminBroadcast:
		var p struct {
			Level      string   `json:"level"`
			Title      string   `json:"title"`
			Message    string   `json:"message"`
			Recipients []string `json:"recipients"`
		}
		if err := json.Unmarshal(a.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", a.Type, err)
		}
		kind := model.KindAdminInfo
		switch p.Level {
		case "announcement":
			kind = model.KindAdminAnnouncement
		case "warning":
			kind = model.KindAdminWarning
		case "system":
			kind = model.KindSystemAlert
		}
		return d.AdminBroadcast(ctx, kind, p.Title, p.Message, p.Recipients)

	default:
		return fmt.Errorf("%w: %s", errUnknownAction, a.Type)
	}
}
