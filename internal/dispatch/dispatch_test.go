package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

type fakeStore struct {
	inserted []*model.Notification
	err      error
}

func (f *fakeStore) Insert(_ context.Context, n *model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, n)
	return nil
}

type push struct {
	target  string
	payload []byte
}

type fakePusher struct {
	users []push
	rooms []push
}

func (f *fakePusher) SendToUser(userID string, payload []byte) {
	f.users = append(f.users, push{userID, payload})
}

func (f *fakePusher) Broadcast(room string, payload []byte) {
	f.rooms = append(f.rooms, push{room, payload})
}

func decodeEnvelope(t *testing.T, raw []byte) wire.Envelope {
	t.Helper()
	var env wire.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func newTestDispatcher() (*Dispatcher, *fakeStore, *fakePusher) {
	st := &fakeStore{}
	p := &fakePusher{}
	return New(st, p, zap.NewNop().Sugar()), st, p
}

func TestNotifyUserPersistsThenPushes(t *testing.T) {
	d, st, p := newTestDispatcher()

	err := d.NotifyUser(context.Background(), &model.Notification{
		UserID:  "alice",
		Kind:    model.KindMessage,
		Title:   "New message",
		Message: "hey",
	})
	require.NoError(t, err)

	require.Len(t, st.inserted, 1)
	assert.NotEmpty(t, st.inserted[0].ID)
	assert.False(t, st.inserted[0].Read)
	assert.False(t, st.inserted[0].CreatedAt.IsZero())

	require.Len(t, p.users, 1)
	assert.Equal(t, "alice", p.users[0].target)
	env := decodeEnvelope(t, p.users[0].payload)
	assert.Equal(t, wire.EventNewNotification, env.Type)

	var pushed model.Notification
	require.NoError(t, json.Unmarshal(env.Payload, &pushed))
	assert.Equal(t, st.inserted[0].ID, pushed.ID)
}

func TestNotifyUserPersistFailureSkipsPush(t *testing.T) {
	d, st, p := newTestDispatcher()
	st.err = errors.New("mongo down")

	err := d.NotifyUser(context.Background(), &model.Notification{UserID: "alice"})
	require.Error(t, err)
	assert.Empty(t, p.users)
}

func TestEventCreatedBroadcastsAndNotifiesRecipients(t *testing.T) {
	d, st, p := newTestDispatcher()

	ev := &model.Event{ID: "e1", Title: "Hackathon", CreatedBy: "carol"}
	err := d.EventCreated(context.Background(), ev, []string{"alice", "carol", "bob"})
	require.NoError(t, err)

	require.Len(t, p.rooms, 1)
	assert.Equal(t, wire.RoomEvents, p.rooms[0].target)
	env := decodeEnvelope(t, p.rooms[0].payload)
	assert.Equal(t, wire.EventFeedUpdate, env.Type)

	var update model.FeedUpdate
	require.NoError(t, json.Unmarshal(env.Payload, &update))
	assert.Equal(t, model.FeedUpdateCreated, update.Type)

	// the author is skipped
	require.Len(t, st.inserted, 2)
	assert.Equal(t, "alice", st.inserted[0].UserID)
	assert.Equal(t, "bob", st.inserted[1].UserID)
}

func TestInterestToggledPushesWholesaleEntity(t *testing.T) {
	d, st, p := newTestDispatcher()

	ev := &model.Event{ID: "e1", Title: "Hackathon", CreatedBy: "carol", Interested: []string{"alice"}}
	err := d.InterestToggled(context.Background(), ev, "alice", true)
	require.NoError(t, err)

	require.Len(t, p.rooms, 1)
	env := decodeEnvelope(t, p.rooms[0].payload)
	var update model.FeedUpdate
	require.NoError(t, json.Unmarshal(env.Payload, &update))
	assert.Equal(t, model.FeedUpdateInterestUpdated, update.Type)

	var iu model.InterestUpdate
	require.NoError(t, json.Unmarshal(update.Data, &iu))
	assert.Equal(t, "e1", iu.EventID)
	assert.Equal(t, []string{"alice"}, iu.Event.Interested)

	require.Len(t, st.inserted, 1)
	assert.Equal(t, "carol", st.inserted[0].UserID)
	assert.Equal(t, model.KindInterest, st.inserted[0].Kind)
}

func TestInterestRemovedDoesNotNotifyOwner(t *testing.T) {
	d, st, p := newTestDispatcher()

	ev := &model.Event{ID: "e1", CreatedBy: "carol"}
	require.NoError(t, d.InterestToggled(context.Background(), ev, "alice", false))

	assert.Len(t, p.rooms, 1)
	assert.Empty(t, st.inserted)
}

func TestInterestByOwnerDoesNotSelfNotify(t *testing.T) {
	d, st, _ := newTestDispatcher()

	ev := &model.Event{ID: "e1", CreatedBy: "carol"}
	require.NoError(t, d.InterestToggled(context.Background(), ev, "carol", true))
	assert.Empty(t, st.inserted)
}

func TestAdminBroadcastFansOutPerRecipient(t *testing.T) {
	d, st, p := newTestDispatcher()

	err := d.AdminBroadcast(context.Background(), model.KindAdminWarning, "Maintenance", "Down at 2am", []string{"alice", "bob"})
	require.NoError(t, err)

	require.Len(t, st.inserted, 2)
	require.Len(t, p.users, 2)
	for _, n := range st.inserted {
		assert.Equal(t, model.KindAdminWarning, n.Kind)
		assert.Empty(t, n.SenderID)
	}
}
