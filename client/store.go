package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/model"
	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

// ErrDeclined is returned by DeleteAll when the confirmation hook declined
// (or no hook is installed). The store is left unchanged.
var ErrDeclined = errors.New("deletion not confirmed")

// Store is the client-side cache of the viewer's notifications, newest first,
// with the derived unread counter. List and counter always mutate together
// under one lock so no reader observes a half-applied update.
//
// Every server-backed mutation is optimistic with a compensating rollback:
// the local change is applied first and undone if the server call fails.
type Store struct {
	api    API
	logger *zap.SugaredLogger

	// Confirm gates DeleteAll. It must block until the user decided.
	Confirm func() bool
	// Notifier, when set, surfaces a pushed notification to the OS. Called
	// best-effort: a panicking or slow notifier never breaks the store.
	Notifier func(model.Notification)

	mu     sync.Mutex
	items  []model.Notification
	unread int
}

func NewStore(api API, logger *zap.SugaredLogger) *Store {
	return &Store{api: api, logger: logger}
}

// Attach subscribes the store to the connection's newNotification pushes and
// returns the detach func.
func (s *Store) Attach(c *Conn) func() {
	return c.Subscribe(wire.EventNewNotification, func(payload json.RawMessage) {
		var n model.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			s.logger.Debugw("malformed notification push dropped", "error", err)
			return
		}
		s.ReceivePush(n)
	})
}

// LoadAll fetches the full list and replaces the cache wholesale. It is the
// consistency anchor: the counter is recomputed absolutely from the fresh
// list.
func (s *Store) LoadAll(ctx context.Context) error {
	notifs, err := s.api.ListNotifications(ctx)
	if err != nil {
		return err
	}

	unread := 0
	for _, n := range notifs {
		if !n.Read {
			unread++
		}
	}

	s.mu.Lock()
	s.items = notifs
	s.unread = unread
	s.mu.Unlock()
	return nil
}

// LoadUnreadCount fetches the authoritative scalar and sets the counter
// absolutely, correcting any drift accumulated by incremental updates.
func (s *Store) LoadUnreadCount(ctx context.Context) error {
	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	if count < 0 {
		count = 0
	}
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()
	return nil
}

// MarkAsRead flips one notification to read. Idempotent: repeat calls leave
// the store unchanged and the counter is decremented at most once, never
// below zero.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	applied := false
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].Read {
				s.items[i].Read = true
				s.decrementUnreadLocked()
				applied = true
			}
			break
		}
	}
	s.mu.Unlock()

	if err := s.api.MarkRead(ctx, id); err != nil {
		if applied {
			s.mu.Lock()
			for i := range s.items {
				if s.items[i].ID == id {
					s.items[i].Read = false
					s.unread++
					break
				}
			}
			s.mu.Unlock()
		}
		return err
	}
	return nil
}

// MarkAllAsRead flips every cached notification to read and zeroes the
// counter. On server failure the previous read flags and counter are
// restored.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	flipped := make([]string, 0)
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			flipped = append(flipped, s.items[i].ID)
		}
	}
	prevUnread := s.unread
	s.unread = 0
	s.mu.Unlock()

	if err := s.api.MarkAllRead(ctx); err != nil {
		s.mu.Lock()
		wasFlipped := make(map[string]struct{}, len(flipped))
		for _, id := range flipped {
			wasFlipped[id] = struct{}{}
		}
		for i := range s.items {
			if _, ok := wasFlipped[s.items[i].ID]; ok {
				s.items[i].Read = false
			}
		}
		s.unread = prevUnread
		s.mu.Unlock()
		return err
	}
	return nil
}

// Delete removes one notification from the cache, decrementing the counter
// if it was unread. On server failure the item is reinserted at its previous
// position.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	var removed model.Notification
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			removed = s.items[i]
			break
		}
	}
	if idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		if !removed.Read {
			s.decrementUnreadLocked()
		}
	}
	s.mu.Unlock()

	if err := s.api.DeleteNotification(ctx, id); err != nil {
		if idx >= 0 {
			s.mu.Lock()
			if idx > len(s.items) {
				idx = len(s.items)
			}
			s.items = append(s.items[:idx], append([]model.Notification{removed}, s.items[idx:]...)...)
			if !removed.Read {
				s.unread++
			}
			s.mu.Unlock()
		}
		return err
	}
	return nil
}

// DeleteAll clears the cache and counter after the Confirm hook accepted.
// A declined confirmation leaves the store untouched and returns ErrDeclined.
func (s *Store) DeleteAll(ctx context.Context) error {
	if s.Confirm == nil || !s.Confirm() {
		return ErrDeclined
	}

	s.mu.Lock()
	prevItems := s.items
	prevUnread := s.unread
	s.items = nil
	s.unread = 0
	s.mu.Unlock()

	if err := s.api.DeleteAllNotifications(ctx); err != nil {
		s.mu.Lock()
		s.items = prevItems
		s.unread = prevUnread
		s.mu.Unlock()
		return err
	}
	return nil
}

// ReceivePush prepends a pushed notification and increments the counter.
// A push whose id is already cached is dropped: it raced a concurrent
// LoadAll that already included it.
func (s *Store) ReceivePush(n model.Notification) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == n.ID {
			s.mu.Unlock()
			return
		}
	}
	s.items = append([]model.Notification{n}, s.items...)
	if !n.Read {
		s.unread++
	}
	s.mu.Unlock()

	s.notify(n)
}

func (s *Store) notify(n model.Notification) {
	if s.Notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warnw("notifier hook panicked", "recovered", r)
		}
	}()
	s.Notifier(n)
}

// decrementUnreadLocked clamps at zero. Callers hold s.mu.
func (s *Store) decrementUnreadLocked() {
	if s.unread > 0 {
		s.unread--
	}
}

// Snapshot returns a copy of the cached notifications, newest first.
func (s *Store) Snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the current derived counter. Never negative.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}
