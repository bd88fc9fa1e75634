package wire

import "encoding/json"

// Server -> client event names.
const (
	EventNewNotification = "newNotification"
	EventFeedUpdate      = "feedUpdate"
)

// Client -> server verbs for room membership control. No payload, no ack.
const (
	VerbJoinEvents  = "joinEvents"
	VerbLeaveEvents = "leaveEvents"
	VerbJoin        = "join"
	VerbLeave       = "leave"
)

// RoomEvents is the broadcast scope for the events feed.
const RoomEvents = "events"

// Envelope is the wire format for every websocket message, both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload and wraps it. Marshal errors are returned
// so pushes never silently drop a malformed payload.
func NewEnvelope(typ string, payload any) (*Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: typ, Payload: b}, nil
}
