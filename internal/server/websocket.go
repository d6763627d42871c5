package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/zeusync/orbitpick/internal/core/observability/log"
)

const (
	maxMessageSize = 4096
	inputBuffer    = 32

	defaultHelloTimeout = 500 * time.Millisecond
)

// client is one browser connection. Writes are serialized by writeMu.
type client struct {
	id          string
	conn        *websocket.Conn
	connectedAt time.Time
	timeout     time.Duration
	writeMu     sync.Mutex
	closed      int32
}

func newClient(conn *websocket.Conn, timeout time.Duration) *client {
	return &client{
		id:          uuid.New().String(),
		conn:        conn,
		connectedAt: time.Now(),
		timeout:     timeout,
	}
}

func (c *client) send(msg any) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return errors.Wrap(ErrTransportFailed, "connection is closed")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

func (c *client) close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = c.conn.Close()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	total := atomic.AddInt64(&s.sessionCount, 1)
	if limit := s.config.MaxSessions; limit > 0 && total > int64(limit) {
		atomic.AddInt64(&s.sessionCount, -1)
		s.logger.Warn("Maximum sessions reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxSessionsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddInt64(&s.sessionCount, -1)
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn, s.config.WriteTimeout)
	s.sessions.Store(c.id, c)
	s.metrics.SessionOpened()

	clientLogger := s.logger.With(log.String("session_id", c.id))
	clientLogger.Info("Client connected",
		log.String("remote_addr", r.RemoteAddr),
		log.Int64("total_sessions", total))

	defer func() {
		c.close()
		s.sessions.Delete(c.id)
		remaining := atomic.AddInt64(&s.sessionCount, -1)
		s.metrics.SessionClosed()
		clientLogger.Info("Client disconnected",
			log.Duration("connected", time.Since(c.connectedAt)),
			log.Int64("total_sessions", remaining))
	}()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	inputs := make(chan ClientMessage, inputBuffer)
	go s.readLoop(ctx, c, inputs, clientLogger)

	if err := s.runSession(ctx, c, inputs, clientLogger); err != nil {
		clientLogger.Warn("Session ended with error", log.Error(err))
	}
}

// readLoop decodes client messages and forwards them to the session loop.
// Clicks over the rate limit are dropped here.
func (s *Server) readLoop(ctx context.Context, c *client, inputs chan<- ClientMessage, logger log.Log) {
	defer close(inputs)

	limiter := rate.NewLimiter(rate.Limit(s.config.ClickRate), s.config.ClickBurst)
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				atomic.LoadInt32(&c.closed) == 0 {
				logger.Debug("Read failed", log.Error(err))
			}
			return
		}

		if msg.Type == TypeClick && !limiter.Allow() {
			s.metrics.ClickDropped()
			logger.Debug("Click dropped by rate limit")
			continue
		}

		select {
		case inputs <- msg:
		case <-ctx.Done():
			return
		}
	}
}
