package client

import (
	"sync"

	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

// RoomRegistry tracks the ephemeral broadcast scopes this connection is
// subscribed to. Memberships are connection-scoped and never persisted; the
// registry re-sends them after a reconnect so feed pushes resume without a
// remount.
type RoomRegistry struct {
	conn *Conn

	mu   sync.Mutex
	held map[string]struct{}
}

func newRoomRegistry(c *Conn) *RoomRegistry {
	return &RoomRegistry{conn: c, held: make(map[string]struct{})}
}

// Join subscribes to a room. Joining a room already held is a no-op. The verb
// is fire-and-forget: a send failure only means the membership will be
// restored by the next reconnect.
func (r *RoomRegistry) Join(room string) {
	r.mu.Lock()
	if _, ok := r.held[room]; ok {
		r.mu.Unlock()
		return
	}
	r.held[room] = struct{}{}
	r.mu.Unlock()

	r.send(joinVerb(room), room)
}

// Leave releases a room. Leaving an unheld room is a no-op.
func (r *RoomRegistry) Leave(room string) {
	r.mu.Lock()
	if _, ok := r.held[room]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.held, room)
	r.mu.Unlock()

	r.send(leaveVerb(room), room)
}

// Held returns the rooms currently subscribed, for diagnostics and tests.
func (r *RoomRegistry) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.held))
	for room := range r.held {
		out = append(out, room)
	}
	return out
}

// rejoinAll re-sends the join verb for every held room after a reconnect.
func (r *RoomRegistry) rejoinAll() {
	for _, room := range r.Held() {
		r.send(joinVerb(room), room)
	}
}

func (r *RoomRegistry) send(verb, room string) {
	env := &wire.Envelope{Type: verb}
	if verb == wire.VerbJoin || verb == wire.VerbLeave {
		env.Room = room
	}
	if err := r.conn.Send(env); err != nil {
		r.conn.logger.Debugw("room verb not sent", "verb", verb, "room", room, "error", err)
	}
}

// The events feed has dedicated wire verbs; other rooms use the generic pair.
func joinVerb(room string) string {
	if room == wire.RoomEvents {
		return wire.VerbJoinEvents
	}
	return wire.VerbJoin
}

func leaveVerb(room string) string {
	if room == wire.RoomEvents {
		return wire.VerbLeaveEvents
	}
	return wire.VerbLeave
}
