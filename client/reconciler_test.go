package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
)

func hydratedReconciler(t *testing.T) *FeedReconciler {
	t.Helper()
	api := &fakeAPI{events: []model.Event{
		{ID: "e2", Title: "Career fair"},
		{ID: "e1", Title: "Hackathon"},
	}}
	conn := NewConn(ConnConfig{URL: "ws://localhost/ws"}, zap.NewNop().Sugar())
	f := NewFeedReconciler(api, conn, zap.NewNop().Sugar())
	require.NoError(t, f.Hydrate(context.Background()))
	require.True(t, f.Hydrated())
	return f
}

func createdDelta(t *testing.T, ev model.Event) *model.FeedUpdate {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return &model.FeedUpdate{Type: model.FeedUpdateCreated, Data: data}
}

func interestDelta(t *testing.T, iu model.InterestUpdate) *model.FeedUpdate {
	t.Helper()
	data, err := json.Marshal(iu)
	require.NoError(t, err)
	return &model.FeedUpdate{Type: model.FeedUpdateInterestUpdated, Data: data}
}

func TestCreatedDeltaPrependsUnknownEntity(t *testing.T) {
	f := hydratedReconciler(t)

	f.Apply(createdDelta(t, model.Event{ID: "e3", Title: "Movie night"}))

	snap := f.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "e3", snap[0].ID)
}

func TestCreatedDeltaForKnownIDIsNoop(t *testing.T) {
	f := hydratedReconciler(t)

	f.Apply(createdDelta(t, model.Event{ID: "e1", Title: "Hackathon (dup)"}))

	snap := f.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Hackathon", snap[1].Title)
}

func TestInterestUpdateReplacesEntityWholesale(t *testing.T) {
	f := hydratedReconciler(t)

	updated := model.Event{ID: "e1", Title: "Hackathon v2", Interested: []string{"alice"}}
	f.Apply(interestDelta(t, model.InterestUpdate{EventID: "e1", Event: updated}))

	snap := f.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, updated, snap[1])
}

// Scenario: an interest update for an entity not in the local collection is
// safely ignored.
func TestInterestUpdateForUnknownEntityIsIgnored(t *testing.T) {
	f := hydratedReconciler(t)
	before := f.Snapshot()

	f.Apply(interestDelta(t, model.InterestUpdate{EventID: "e99", Event: model.Event{ID: "e99"}}))

	assert.Equal(t, before, f.Snapshot())
}

func TestUnknownDeltaTypeIsIgnored(t *testing.T) {
	f := hydratedReconciler(t)
	before := f.Snapshot()

	f.Apply(&model.FeedUpdate{Type: "renamed", Data: json.RawMessage(`{}`)})

	assert.Equal(t, before, f.Snapshot())
}

func TestMalformedDeltaDoesNotCrash(t *testing.T) {
	f := hydratedReconciler(t)

	assert.NotPanics(t, func() {
		f.Apply(&model.FeedUpdate{Type: model.FeedUpdateCreated, Data: json.RawMessage(`"not an event"`)})
		f.Apply(&model.FeedUpdate{Type: model.FeedUpdateInterestUpdated, Data: json.RawMessage(`[]`)})
	})
	assert.Len(t, f.Snapshot(), 2)
}

func TestClosedReconcilerDiscardsDeltas(t *testing.T) {
	f := hydratedReconciler(t)
	f.Close()

	f.Apply(createdDelta(t, model.Event{ID: "e3"}))
	assert.Len(t, f.Snapshot(), 2)
}
