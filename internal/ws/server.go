package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sakin08/New-web-sub002/internal/auth"
	"github.com/Sakin08/New-web-sub002/internal/hub"
)

type Server struct {
	hub    *hub.Hub
	jv     *auth.Validator
	logger *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewServer(h *hub.Hub, jv *auth.Validator, logger *zap.SugaredLogger, pingInterval, writeDeadline time.Duration, maxMsgSize int64) *Server {
	return &Server{
		hub:           h,
		jv:            jv,
		logger:        logger,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// Handle authenticates the upgraded connection and runs its pumps. One
// logical push channel per session; rooms are joined explicitly afterwards.
func (s *Server) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			_ = conn.Close()
			return
		}
		uid, err := s.jv.Validate(token)
		if err != nil {
			_ = conn.Close()
			return
		}

		client := hub.NewClient(uid, uuid.New().String())
		s.hub.Register(client)
		s.logger.Infow("client connected", "user_id", uid, "socket_id", client.SocketID)

		c := NewConnection(conn, client, s.hub, s.logger, s.pingInterval, s.writeDeadline, s.maxMsgSize)
		go c.writePump()
		c.readPump()

		s.logger.Infow("client disconnected", "user_id", uid, "socket_id", client.SocketID)
	}
}
