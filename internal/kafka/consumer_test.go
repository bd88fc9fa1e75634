package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sakin08/New-web-sub002/pkg/model"
)

type call struct {
	method string
	kind   model.Kind
	args   []string
}

type fakeDispatcher struct {
	calls []call
}

func (f *fakeDispatcher) MessageReceived(_ context.Context, recipientID, senderID, preview string) error {
	f.calls = append(f.calls, call{method: "MessageReceived", args: []string{recipientID, senderID, preview}})
	return nil
}

func (f *fakeDispatcher) EventCreated(_ context.Context, ev *model.Event, recipients []string) error {
	f.calls = append(f.calls, call{method: "EventCreated", args: append([]string{ev.ID}, recipients...)})
	return nil
}

func (f *fakeDispatcher) PostCreated(_ context.Context, kind model.Kind, postID, authorID, title string, recipients []string) error {
	f.calls = append(f.calls, call{method: "PostCreated", kind: kind, args: []string{postID, authorID, title}})
	return nil
}

func (f *fakeDispatcher) InterestToggled(_ context.Context, ev *model.Event, actorID string, added bool) error {
	f.calls = append(f.calls, call{method: "InterestToggled", args: []string{ev.ID, actorID}})
	return nil
}

func (f *fakeDispatcher) UserJoined(_ context.Context, ownerID, joinerID, groupName string) error {
	f.calls = append(f.calls, call{method: "UserJoined", args: []string{ownerID, joinerID, groupName}})
	return nil
}

func (f *fakeDispatcher) AdminBroadcast(_ context.Context, kind model.Kind, title, message string, recipients []string) error {
	f.calls = append(f.calls, call{method: "AdminBroadcast", kind: kind, args: append([]string{title}, recipients...)})
	return nil
}

func TestApplyMessageSent(t *testing.T) {
	d := &fakeDispatcher{}
	raw := []byte(`{"type":"message.sent","data":{"recipient_id":"alice","sender_id":"bob","preview":"hi"}}`)

	require.NoError(t, Apply(context.Background(), d, raw))
	require.Len(t, d.calls, 1)
	assert.Equal(t, "MessageReceived", d.calls[0].method)
	assert.Equal(t, []string{"alice", "bob", "hi"}, d.calls[0].args)
}

func TestApplyPostCreatedMapsCategoryToKind(t *testing.T) {
	d := &fakeDispatcher{}

	raw := []byte(`{"type":"post.created","data":{"category":"housing","post_id":"p1","author_id":"bob","title":"Room","recipients":["alice"]}}`)
	require.NoError(t, Apply(context.Background(), d, raw))
	assert.Equal(t, model.KindHousingCreated, d.calls[0].kind)

	raw = []byte(`{"type":"post.created","data":{"category":"listing","post_id":"p2","author_id":"bob","title":"Bike","recipients":["alice"]}}`)
	require.NoError(t, Apply(context.Background(), d, raw))
	assert.Equal(t, model.KindListingCreated, d.calls[1].kind)
}

func TestApplyAdminBroadcastLevels(t *testing.T) {
	cases := map[string]model.Kind{
		"announcement": model.KindAdminAnnouncement,
		"warning":      model.KindAdminWarning,
		"system":       model.KindSystemAlert,
		"info":         model.KindAdminInfo,
		"":             model.KindAdminInfo,
	}
	for level, want := range cases {
		d := &fakeDispatcher{}
		raw := []byte(`{"type":"admin.broadcast","data":{"level":"` + level + `","title":"t","message":"m","recipients":["alice"]}}`)
		require.NoError(t, Apply(context.Background(), d, raw))
		assert.Equal(t, want, d.calls[0].kind, "level %q", level)
	}
}

func TestApplyInterestToggled(t *testing.T) {
	d := &fakeDispatcher{}
	raw := []byte(`{"type":"interest.toggled","data":{"event":{"id":"e1"},"actor_id":"alice","added":true}}`)

	require.NoError(t, Apply(context.Background(), d, raw))
	require.Len(t, d.calls, 1)
	assert.Equal(t, "InterestToggled", d.calls[0].method)
	assert.Equal(t, []string{"e1", "alice"}, d.calls[0].args)
}

func TestApplyUnknownActionIsAnError(t *testing.T) {
	d := &fakeDispatcher{}
	err := Apply(context.Background(), d, []byte(`{"type":"something.else","data":{}}`))
	require.Error(t, err)
	assert.Empty(t, d.calls)
}

func TestApplyMalformedPayloadIsAnError(t *testing.T) {
	d := &fakeDispatcher{}
	require.Error(t, Apply(context.Background(), d, []byte(`not json`)))
	require.Error(t, Apply(context.Background(), d, []byte(`{"type":"message.sent","data":"nope"}`)))
	assert.Empty(t, d.calls)
}
