package client

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

// FeedReconciler merges pushed feed deltas into the REST-fetched events
// collection. Entity id is the sole dedup key: a created delta for a known id
// is a no-op, an interest update for an unknown id is safely ignored.
//
// It lives for the lifetime of the feed view: Open joins the events room and
// subscribes, Close unsubscribes and leaves.
type FeedReconciler struct {
	api    API
	conn   *Conn
	logger *zap.SugaredLogger

	mu       sync.Mutex
	events   []model.Event
	hydrated bool
	closed   bool
	unsub    func()
}

func NewFeedReconciler(api API, conn *Conn, logger *zap.SugaredLogger) *FeedReconciler {
	return &FeedReconciler{api: api, conn: conn, logger: logger}
}

// Open joins the events room and starts applying pushed deltas.
func (f *FeedReconciler) Open() {
	f.mu.Lock()
	if f.closed || f.unsub != nil {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.conn.Rooms().Join(wire.RoomEvents)
	unsub := f.conn.Subscribe(wire.EventFeedUpdate, func(payload json.RawMessage) {
		var update model.FeedUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			f.logger.Debugw("malformed feed update dropped", "error", err)
			return
		}
		f.Apply(&update)
	})

	f.mu.Lock()
	f.unsub = unsub
	f.mu.Unlock()
}

// Hydrate performs the initial REST fetch, replacing the collection
// wholesale.
func (f *FeedReconciler) Hydrate(ctx context.Context) error {
	events, err := f.api.ListEvents(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	if !f.closed {
		f.events = events
		f.hydrated = true
	}
	f.mu.Unlock()
	return nil
}

// Hydrated reports whether the initial fetch completed.
func (f *FeedReconciler) Hydrated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hydrated
}

// Apply merges one pushed delta. Malformed payloads and unknown delta types
// never crash the reconciler; they are logged and ignored.
func (f *FeedReconciler) Apply(update *model.FeedUpdate) {
	switch update.Type {
	case model.FeedUpdateCreated:
		var ev model.Event
		if err := json.Unmarshal(update.Data, &ev); err != nil {
			f.logger.Debugw("malformed created delta dropped", "error", err)
			return
		}
		f.applyCreated(ev)

	case model.FeedUpdateInterestUpdated:
		var iu model.InterestUpdate
		if err := json.Unmarshal(update.Data, &iu); err != nil {
			f.logger.Debugw("malformed interest delta dropped", "error", err)
			return
		}
		f.applyInterestUpdated(iu)

	default:
		f.logger.Debugw("unknown feed delta ignored", "type", update.Type)
	}
}

func (f *FeedReconciler) applyCreated(ev model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for i := range f.events {
		if f.events[i].ID == ev.ID {
			// already present, the push raced the hydrating fetch
			return
		}
	}
	f.events = append([]model.Event{ev}, f.events...)
}

// applyInterestUpdated replaces the matching entity wholesale: the pushed
// entity is trusted to carry every field.
func (f *FeedReconciler) applyInterestUpdated(iu model.InterestUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for i := range f.events {
		if f.events[i].ID == iu.EventID {
			f.events[i] = iu.Event
			return
		}
	}
	// entity not known locally: safe ignore
}

// Snapshot returns a copy of the current collection, newest first.
func (f *FeedReconciler) Snapshot() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Close unsubscribes from feed pushes and leaves the events room. Deltas and
// late fetch results arriving afterwards are discarded.
func (f *FeedReconciler) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	unsub := f.unsub
	f.unsub = nil
	f.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	f.conn.Rooms().Leave(wire.RoomEvents)
}
