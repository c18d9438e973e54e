package stream

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionID builds a randomized protocol session identifier such as
// "qs_a1b2c3d4e5f6". Upstream rejects reused IDs across sockets, so a
// fresh one is generated per logical request.
func SessionID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:12]
}

// Session owns one WebSocket connection and its read loop. Decoded
// packets are delivered on Packets(); heartbeats are echoed internally
// and never surface. The channel closes when the socket dies or Close
// is called, whichever comes first.
type Session struct {
	conn    *websocket.Conn
	log     *zap.Logger
	packets chan *Packet
	done    chan struct{}

	writeMu sync.Mutex
	once    sync.Once

	mu      sync.Mutex
	readErr error
}

// Dial connects and starts the read loop. The Origin header is required
// by the upstream's handshake check.
func Dial(ctx context.Context, url, origin string, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	s := &Session{
		conn:    conn,
		log:     log,
		packets: make(chan *Packet, 16),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Packets streams decoded method packets until the session ends.
func (s *Session) Packets() <-chan *Packet { return s.packets }

// Send frames and writes one method call.
func (s *Session) Send(method string, params ...any) error {
	frame, err := EncodePacket(method, params...)
	if err != nil {
		return err
	}
	return s.write(frame)
}

func (s *Session) write(frame string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// Close tears the socket down. Safe to call from any goroutine, any
// number of times; the read loop exits and Packets() closes.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Err reports why the read loop stopped, nil on clean Close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

func (s *Session) readLoop() {
	defer close(s.packets)
	defer s.Close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.mu.Lock()
				s.readErr = err
				s.mu.Unlock()
			}
			return
		}
		for _, payload := range Decode(string(data)) {
			if IsHeartbeat(payload) {
				if err := s.write(Encode(payload)); err != nil {
					s.log.Debug("heartbeat echo failed", zap.Error(err))
					return
				}
				continue
			}
			if p, ok := ParsePacket(payload); ok {
				// A consumer that returned early stops draining; done
				// unblocks the delivery so the loop can exit.
				select {
				case s.packets <- p:
				case <-s.done:
					return
				}
			}
		}
	}
}
