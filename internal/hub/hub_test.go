package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return New(nil, "test", zap.NewNop().Sugar())
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case b := <-c.Send:
		return b
	default:
		t.Fatal("expected a delivery")
		return nil
	}
}

func assertNoDelivery(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("unexpected delivery: %s", b)
	default:
	}
}

func TestSendToUserReachesAllSockets(t *testing.T) {
	h := newTestHub()
	a1 := NewClient("alice", "s1")
	a2 := NewClient("alice", "s2")
	b := NewClient("bob", "s3")
	h.Register(a1)
	h.Register(a2)
	h.Register(b)

	h.SendToUser("alice", []byte("hi"))

	assert.Equal(t, []byte("hi"), recv(t, a1))
	assert.Equal(t, []byte("hi"), recv(t, a2))
	assertNoDelivery(t, b)
}

func TestBroadcastOnlyReachesRoomMembers(t *testing.T) {
	h := newTestHub()
	member := NewClient("alice", "s1")
	outsider := NewClient("bob", "s2")
	h.Register(member)
	h.Register(outsider)
	h.Join("events", member)

	h.Broadcast("events", []byte("delta"))

	assert.Equal(t, []byte("delta"), recv(t, member))
	assertNoDelivery(t, outsider)
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", "s1")
	h.Register(c)

	h.Join("events", c)
	h.Join("events", c)

	h.Broadcast("events", []byte("once"))
	assert.Equal(t, []byte("once"), recv(t, c))
	assertNoDelivery(t, c)
}

func TestLeaveUnjoinedRoomIsNoop(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", "s1")
	h.Register(c)

	h.Leave("events", c)
	assert.False(t, h.InRoom("events", c))
}

func TestLeaveStopsDeliveries(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", "s1")
	h.Register(c)
	h.Join("events", c)
	require.True(t, h.InRoom("events", c))

	h.Leave("events", c)
	h.Broadcast("events", []byte("delta"))
	assertNoDelivery(t, c)
}

func TestUnregisterClearsAllRooms(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", "s1")
	h.Register(c)
	h.Join("events", c)
	h.Join("housing", c)

	h.Unregister(c)

	assert.False(t, h.InRoom("events", c))
	assert.False(t, h.InRoom("housing", c))
	h.SendToUser("alice", []byte("late"))
	assertNoDelivery(t, c)
}

func TestSlowConsumerNeverBlocksDispatch(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", "s1")
	h.Register(c)

	// fill the send buffer past capacity; extra pushes must be dropped,
	// not block
	for i := 0; i < cap(c.Send)+10; i++ {
		h.SendToUser("alice", []byte("x"))
	}

	assert.Equal(t, cap(c.Send), len(c.Send))
}
