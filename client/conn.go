package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

func (s State) validateTransitionTo(next State) error {
	switch s {
	case StateDisconnected:
		switch next {
		case StateConnecting, StateDisconnected, StateClosing:
			return nil
		}
	case StateConnecting:
		switch next {
		case StateConnected, StateDisconnected:
			return nil
		}
	case StateConnected:
		switch next {
		case StateConnecting, StateClosing, StateDisconnected:
			return nil
		}
	case StateClosing:
		if next == StateClosed {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition from %v to %v", s, next)
}

type ConnConfig struct {
	// URL is the websocket endpoint including the token query parameter.
	URL string
	// CheckInterval controls how often the reconnection loop probes a dropped
	// connection. Defaults to 5 seconds.
	CheckInterval time.Duration
	// HandshakeTimeout bounds the dial. Defaults to 10 seconds.
	HandshakeTimeout time.Duration
}

// Conn is the one logical push channel of a session. It reconnects
// automatically after the initial Connect succeeds; transport failures are
// surfaced only as state transitions, never as errors to subscribers.
type Conn struct {
	cfg    ConnConfig
	logger *zap.SugaredLogger

	mu       sync.Mutex
	state    State
	ws       *websocket.Conn
	handlers map[string]map[int]func(json.RawMessage)
	stateFns []func(State)
	nextID   int

	rooms *RoomRegistry

	once       sync.Once
	closeCh    chan struct{}
	loopDoneCh chan struct{}
	readGen    int
}

func NewConn(cfg ConnConfig, logger *zap.SugaredLogger) *Conn {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	c := &Conn{
		cfg:      cfg,
		logger:   logger,
		state:    StateDisconnected,
		handlers: make(map[string]map[int]func(json.RawMessage)),
	}
	c.rooms = newRoomRegistry(c)
	return c
}

// Rooms returns the room subscription registry bound to this connection.
func (c *Conn) Rooms() *RoomRegistry { return c.rooms }

func (c *Conn) transitionTo(next State) error {
	c.mu.Lock()
	if err := c.state.validateTransitionTo(next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	fns := make([]func(State), len(c.stateFns))
	copy(fns, c.stateFns)
	c.mu.Unlock()

	c.logger.Debugw("connection state changed", "state", next.String())
	for _, fn := range fns {
		fn(next)
	}
	return nil
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChange registers a connection-state signal handler.
func (c *Conn) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFns = append(c.stateFns, fn)
}

// Subscribe registers a handler for a push event and returns its unsubscribe
// func. Registration cannot fail. Handlers run serialized on the reader
// goroutine, in delivery order.
func (c *Conn) Subscribe(event string, fn func(json.RawMessage)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.handlers[event]; !ok {
		c.handlers[event] = make(map[int]func(json.RawMessage))
	}
	id := c.nextID
	c.nextID++
	c.handlers[event][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

// Connect dials the server and starts the reconnection loop. It returns an
// error only for the initial dial; later drops are retried automatically at
// CheckInterval.
func (c *Conn) Connect(ctx context.Context) error {
	if err := c.transitionTo(StateConnecting); err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		if stateErr := c.transitionTo(StateDisconnected); stateErr != nil {
			c.logger.Errorw("state transition failed after dial error", "error", stateErr)
		}
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	c.ws = ws
	c.readGen++
	gen := c.readGen
	c.mu.Unlock()

	c.once.Do(func() {
		c.closeCh = make(chan struct{})
		c.loopDoneCh = make(chan struct{})
		go c.reconnectLoop()
	})

	if err := c.transitionTo(StateConnected); err != nil {
		return err
	}
	go c.readLoop(ws, gen)
	return nil
}

// readLoop dispatches inbound envelopes until the socket drops. gen guards
// against a stale loop of a replaced socket touching current state.
func (c *Conn) readLoop(ws *websocket.Conn, gen int) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stale := gen != c.readGen
			c.mu.Unlock()
			if stale {
				return
			}
			_ = ws.Close()
			if stateErr := c.transitionTo(StateDisconnected); stateErr != nil {
				// already closing, nothing to do
				return
			}
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debugw("malformed push envelope dropped", "error", err)
			continue
		}
		c.dispatch(&env)
	}
}

func (c *Conn) dispatch(env *wire.Envelope) {
	c.mu.Lock()
	fns := make([]func(json.RawMessage), 0, len(c.handlers[env.Type]))
	for _, fn := range c.handlers[env.Type] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(env.Payload)
	}
}

// Send writes an envelope to the server. Returns an error when disconnected;
// room verbs tolerate this because held rooms are re-sent on reconnect.
func (c *Conn) Send(env *wire.Envelope) error {
	c.mu.Lock()
	ws := c.ws
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || ws == nil {
		return fmt.Errorf("connection is %v", c.State())
	}
	return ws.WriteJSON(env)
}

func (c *Conn) reconnectLoop() {
	defer close(c.loopDoneCh)
	for {
		select {
		case <-c.closeCh:
			return
		case <-time.After(c.cfg.CheckInterval):
		}

		if c.State() != StateDisconnected {
			continue
		}
		c.logger.Info("attempting to reconnect")
		if err := c.Connect(context.Background()); err != nil {
			c.logger.Warnw("reconnect failed", "error", err)
			continue
		}
		// restore room memberships the registry still holds
		c.rooms.rejoinAll()
	}
}

// Close stops the reconnection loop and closes the channel. The connection
// cannot be reused afterwards.
func (c *Conn) Close() error {
	if err := c.transitionTo(StateClosing); err != nil {
		return fmt.Errorf("already closing or closed: %w", err)
	}
	defer func() {
		if err := c.transitionTo(StateClosed); err != nil {
			c.logger.Errorw("state transition to closed failed", "error", err)
		}
	}()

	if c.closeCh != nil {
		close(c.closeCh)
		<-c.loopDoneCh
	}

	c.mu.Lock()
	ws := c.ws
	c.readGen++ // retire any live read loop
	c.mu.Unlock()
	if ws != nil {
		return ws.Close()
	}
	return nil
}
