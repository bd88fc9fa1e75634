package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/internal/metrics"
)

// Hub tracks connected clients and room memberships and fans pushes out to
// them. A Redis pub/sub bridge forwards pushes to peer instances; when rdb is
// nil the hub is single-instance and delivers locally only.
type Hub struct {
	clients map[string]map[*Client]struct{} // userID -> sockets
	rooms   map[string]map[*Client]struct{} // room -> sockets
	mu      sync.RWMutex

	instanceID string
	rdb        *redis.Client
	prefix     string
	logger     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
}

// fanoutMsg is the cross-instance envelope carried over Redis pub/sub.
type fanoutMsg struct {
	Origin string          `json:"origin"`
	Scope  string          `json:"scope"` // "user" or "room"
	Target string          `json:"target"`
	Data   json.RawMessage `json:"data"`
}

func New(rdb *redis.Client, prefix string, logger *zap.SugaredLogger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		instanceID: uuid.New().String(),
		rdb:        rdb,
		prefix:     prefix,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	if rdb != nil {
		go h.subscribeFanout()
	}
	return h
}

func (h *Hub) fanoutChannel() string { return h.prefix + ":fanout" }
func (h *Hub) presenceKey(uid string) string {
	return h.prefix + ":presence:" + uid
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.UserID]; !ok {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()

	metrics.Connections.Inc()
	if h.rdb != nil {
		_ = h.rdb.Set(h.ctx, h.presenceKey(c.UserID), "online", 0).Err()
	}
}

// Unregister removes the client from the user map and every room it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	lastSocket := false
	if set, ok := h.clients[c.UserID]; ok {
		if _, member := set[c]; member {
			delete(set, c)
			metrics.Connections.Dec()
		}
		if len(set) == 0 {
			delete(h.clients, c.UserID)
			lastSocket = true
		}
	}
	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			metrics.RoomMembers.WithLabelValues(room).Dec()
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	if lastSocket && h.rdb != nil {
		_ = h.rdb.Del(h.ctx, h.presenceKey(c.UserID)).Err()
	}
}

// Join adds the client to a room. Joining an already-joined room is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	if _, ok := h.rooms[room][c]; ok {
		return
	}
	h.rooms[room][c] = struct{}{}
	metrics.RoomMembers.WithLabelValues(room).Inc()
}

// Leave removes the client from a room. Leaving an unjoined room is a no-op.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	metrics.RoomMembers.WithLabelValues(room).Dec()
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// InRoom reports whether the client currently holds a membership in room.
func (h *Hub) InRoom(room string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	_, ok = members[c]
	return ok
}

// SendToUser delivers payload to every local socket of a user and publishes
// it for peer instances. Never blocks the caller.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	for c := range h.clients[userID] {
		h.deliver(c, payload)
	}
	h.mu.RUnlock()

	h.publish("user", userID, payload)
}

// Broadcast delivers payload to every current member of the room, local and
// remote. Clients that never joined the room receive nothing.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	for c := range h.rooms[room] {
		h.deliver(c, payload)
	}
	h.mu.RUnlock()

	h.publish("room", room, payload)
}

func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.Send <- payload:
		metrics.PushesDelivered.WithLabelValues("local").Inc()
	default:
		// slow consumer, drop rather than block the dispatcher
		metrics.PushesDropped.Inc()
	}
}

func (h *Hub) publish(scope, target string, payload []byte) {
	if h.rdb == nil {
		return
	}
	msg := fanoutMsg{Origin: h.instanceID, Scope: scope, Target: target, Data: payload}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(h.ctx, h.fanoutChannel(), b).Err(); err != nil {
		h.logger.Warnw("fanout publish failed", "error", err)
	}
}

// subscribeFanout routes envelopes published by peer instances to local
// sockets. Messages tagged with our own instance id are skipped so a push is
// never delivered twice on the instance that originated it.
func (h *Hub) subscribeFanout() {
	pubsub := h.rdb.Subscribe(h.ctx, h.fanoutChannel())
	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				h.logger.Warn("fanout subscription closed")
				return
			}
			var fm fanoutMsg
			if err := json.Unmarshal([]byte(msg.Payload), &fm); err != nil {
				continue
			}
			if fm.Origin == h.instanceID {
				continue
			}
			h.deliverRemote(&fm)
		}
	}
}

func (h *Hub) deliverRemote(fm *fanoutMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch fm.Scope {
	case "user":
		for c := range h.clients[fm.Target] {
			h.deliver(c, fm.Data)
		}
	case "room":
		for c := range h.rooms[fm.Target] {
			h.deliver(c, fm.Data)
		}
	}
}

// Shutdown stops the fanout subscriber.
func (h *Hub) Shutdown() {
	h.cancel()
}
