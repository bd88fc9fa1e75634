package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

// Pusher fans envelopes out to connected clients. *hub.Hub satisfies it.
// Both methods are non-blocking: delivery is at-most-once, no ack, no replay
// for recipients that are offline at emission time.
type Pusher interface {
	SendToUser(userID string, payload []byte)
	Broadcast(room string, payload []byte)
}

// Store persists notifications before they are pushed.
type Store interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// Dispatcher is the authoritative emitter. Collaborator actions (new message,
// new post, interest toggle, join, admin broadcast) come in, exactly one typed
// push per target goes out.
type Dispatcher struct {
	store  Store
	pusher Pusher
	logger *zap.SugaredLogger
}

func New(store Store, pusher Pusher, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher, logger: logger}
}

// NotifyUser persists n and pushes it to the recipient's private channel.
// The push itself cannot fail the triggering action; only the persist error
// is surfaced.
func (d *Dispatcher) NotifyUser(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := d.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	env, err := wire.NewEnvelope(wire.EventNewNotification, n)
	if err != nil {
		d.logger.Errorw("encode notification push", "error", err)
		return nil
	}
	b, _ := json.Marshal(env)
	d.pusher.SendToUser(n.UserID, b)
	return nil
}

// BroadcastFeed pushes a feed delta to current members of the events room.
func (d *Dispatcher) BroadcastFeed(update *model.FeedUpdate) {
	env, err := wire.NewEnvelope(wire.EventFeedUpdate, update)
	if err != nil {
		d.logger.Errorw("encode feed push", "error", err)
		return
	}
	b, _ := json.Marshal(env)
	d.pusher.Broadcast(wire.RoomEvents, b)
}

// MessageReceived notifies the recipient of a new direct message.
func (d *Dispatcher) MessageReceived(ctx context.Context, recipientID, senderID, preview string) error {
	return d.NotifyUser(ctx, &model.Notification{
		UserID:   recipientID,
		SenderID: senderID,
		Kind:     model.KindMessage,
		Title:    "New message",
		Message:  preview,
		Link:     "/messages/" + senderID,
	})
}

// EventCreated announces a new event: one feed delta to the events room and a
// notification per explicitly interested recipient (e.g. category followers).
func (d *Dispatcher) EventCreated(ctx context.Context, ev *model.Event, recipients []string) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	d.BroadcastFeed(&model.FeedUpdate{Type: model.FeedUpdateCreated, Data: data})

	for _, uid := range recipients {
		if uid == ev.CreatedBy {
			continue
		}
		if err := d.NotifyUser(ctx, &model.Notification{
			UserID:   uid,
			SenderID: ev.CreatedBy,
			Kind:     model.KindEventCreated,
			Title:    "New event",
			Message:  ev.Title,
			Link:     "/events/" + ev.ID,
		}); err != nil {
			d.logger.Warnw("notify event recipient", "user_id", uid, "error", err)
		}
	}
	return nil
}

// PostCreated notifies recipients of a new marketplace or housing post.
func (d *Dispatcher) PostCreated(ctx context.Context, kind model.Kind, postID, authorID, title string, recipients []string) error {
	for _, uid := range recipients {
		if uid == authorID {
			continue
		}
		if err := d.NotifyUser(ctx, &model.Notification{
			UserID:   uid,
			SenderID: authorID,
			Kind:     kind,
			Title:    "New post",
			Message:  title,
			Link:     "/posts/" + postID,
		}); err != nil {
			d.logger.Warnw("notify post recipient", "user_id", uid, "error", err)
		}
	}
	return nil
}

// InterestToggled pushes the updated entity to the events room and, when
// interest was turned on, notifies the event owner. The pushed entity replaces
// the local copy wholesale on the client.
func (d *Dispatcher) InterestToggled(ctx context.Context, ev *model.Event, actorID string, added bool) error {
	data, err := json.Marshal(model.InterestUpdate{EventID: ev.ID, Event: *ev})
	if err != nil {
		return fmt.Errorf("encode interest update: %w", err)
	}
	d.BroadcastFeed(&model.FeedUpdate{Type: model.FeedUpdateInterestUpdated, Data: data})

	if !added || ev.CreatedBy == actorID {
		return nil
	}
	return d.NotifyUser(ctx, &model.Notification{
		UserID:   ev.CreatedBy,
		SenderID: actorID,
		Kind:     model.KindInterest,
		Title:    "Someone is interested",
		Message:  ev.Title,
		Link:     "/events/" + ev.ID,
	})
}

// UserJoined notifies a group owner that someone joined.
func (d *Dispatcher) UserJoined(ctx context.Context, ownerID, joinerID, groupName string) error {
	return d.NotifyUser(ctx, &model.Notification{
		UserID:   ownerID,
		SenderID: joinerID,
		Kind:     model.KindJoin,
		Title:    "New member",
		Message:  groupName,
	})
}

// AdminBroadcast fans one notification per recipient. Sender is left empty:
// admin and system notifications carry no user reference.
func (d *Dispatcher) AdminBroadcast(ctx context.Context, kind model.Kind, title, message string, recipients []string) error {
	for _, uid := range recipients {
		if err := d.NotifyUser(ctx, &model.Notification{
			UserID:  uid,
			Kind:    kind,
			Title:   title,
			Message: message,
		}); err != nil {
			d.logger.Warnw("admin broadcast recipient", "user_id", uid, "error", err)
		}
	}
	return nil
}
