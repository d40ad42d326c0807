package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultReconnectDelay is the pause between a close and the next dial.
const DefaultReconnectDelay = time.Second

// Listener receives the lifecycle notifications and frames of a Socket.
//
// All methods are called from the goroutine running Socket.Run. For every
// dial attempt OnConnecting is called first and OnClose last; OnError, when
// called, precedes OnClose.
type Listener interface {
	OnConnecting()
	OnOpen()
	OnClose()
	OnError(err error)
	OnMessage(data []byte)
}

// Socket is a persistent websocket that reconnects whenever it closes,
// until the context passed to Run is cancelled.
type Socket struct {
	url            string
	header         http.Header
	dialer         *websocket.Dialer
	listener       Listener
	reconnectDelay time.Duration

	mu   sync.Mutex // guards conn and serializes writes
	conn *websocket.Conn
}

// SocketOption configures a Socket.
type SocketOption func(*Socket)

// WithHeader sets the HTTP headers sent with every handshake.
func WithHeader(h http.Header) SocketOption {
	return func(s *Socket) {
		s.header = h
	}
}

// WithDialer sets a custom websocket dialer.
func WithDialer(d *websocket.Dialer) SocketOption {
	return func(s *Socket) {
		s.dialer = d
	}
}

// WithReconnectDelay sets the pause between a close and the next dial.
func WithReconnectDelay(d time.Duration) SocketOption {
	return func(s *Socket) {
		s.reconnectDelay = d
	}
}

// NewSocket creates a socket for rawURL that reports to l.
// No connection is made until Run is called.
func NewSocket(rawURL string, l Listener, opts ...SocketOption) *Socket {
	s := &Socket{
		url:            rawURL,
		dialer:         websocket.DefaultDialer,
		listener:       l,
		reconnectDelay: DefaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run dials, reads frames until the connection drops, and dials again.
// It returns ctx.Err() once ctx is cancelled.
func (s *Socket) Run(ctx context.Context) error {
	for {
		err := s.runOnce(ctx)
		if err != nil && ctx.Err() == nil {
			s.listener.OnError(err)
		}
		s.listener.OnClose()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

// runOnce performs one dial and read cycle.
func (s *Socket) runOnce(ctx context.Context) error {
	log := slog.With("conn_id", uuid.NewString(), "host", hostOf(s.url))

	s.listener.OnConnecting()
	conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("realtime: dial: %w (http status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("realtime: dial: %w", err)
	}
	log.Debug("socket opened")

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
		log.Debug("socket closed")
	}()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.listener.OnOpen()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("realtime: read: %w", err)
		}
		if typ != websocket.TextMessage {
			continue
		}
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			msg := string(data)
			if len(msg) > 1000 {
				msg = msg[:1000] + "..."
			}
			log.Debug("received message", "len", len(data), "content", msg)
		}
		s.listener.OnMessage(data)
	}
}

// SendJSON writes v as one text frame. It returns ErrNotConnected when no
// connection is open.
func (s *Socket) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if b, err := json.Marshal(v); err == nil {
			str := string(b)
			if len(str) > 500 {
				str = str[:500] + "..."
			}
			slog.Debug("sending message", "content", str)
		}
	}

	if err := s.conn.WriteJSON(v); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return ErrNotConnected
		}
		return fmt.Errorf("realtime: write: %w", err)
	}
	return nil
}

// hostOf returns the host of rawURL so that query credentials never reach
// the logs.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

var _ Transport = (*Socket)(nil)
