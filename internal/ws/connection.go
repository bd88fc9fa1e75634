package ws

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/internal/hub"
	"github.com/Sakin08/New-web-sub002/pkg/wire"
)

type Connection struct {
	ws     *websocket.Conn
	client *hub.Client
	hub    *hub.Hub
	logger *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewConnection(conn *websocket.Conn, client *hub.Client, h *hub.Hub, logger *zap.SugaredLogger, pingInterval, writeDeadline time.Duration, maxMsgSize int64) *Connection {
	return &Connection{
		ws:            conn,
		client:        client,
		hub:           h,
		logger:        logger,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// readPump consumes client->server envelopes. The only verbs clients send are
// room membership controls; everything else is ignored.
func (c *Connection) readPump() {
	defer func() {
		c.hub.Unregister(c.client)
		c.client.Close()
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(c.maxMsgSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * c.pingInterval))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(2 * c.pingInterval))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch env.Type {
		case wire.VerbJoinEvents:
			c.hub.Join(wire.RoomEvents, c.client)
		case wire.VerbLeaveEvents:
			c.hub.Leave(wire.RoomEvents, c.client)
		case wire.VerbJoin:
			if env.Room != "" {
				c.hub.Join(env.Room, c.client)
			}
		case wire.VerbLeave:
			if env.Room != "" {
				c.hub.Leave(env.Room, c.client)
			}
		default:
			// ignore unknown verbs
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.client.Send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debugw("write failed", "user_id", c.client.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeDeadline))
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
