package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/kushgupta-hiver/mahjongd/internal/session"
)

// Config tunes the websocket endpoint.
type Config struct {
	// HandshakeTimeout bounds the wait for the client's handshake request
	// after the connection opens. Zero waits forever.
	HandshakeTimeout time.Duration
	// Version overrides the advertised server version.
	Version string
}

// Server is an HTTP handler that upgrades to WebSocket and hands the
// connection to the session layer.
type Server interface {
	http.Handler
}

type server struct {
	cfg      Config
	director session.Director
	ids      session.IDGenerator
	log      zerolog.Logger
}

func NewServer(cfg Config, director session.Director, log zerolog.Logger) Server {
	return &server{cfg: cfg, director: director, log: log}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "connection torn down")

	ctx := r.Context()
	sink := &connSink{c: c}
	stream := &connStream{c: c}

	sess, err := session.PerformHandshake(ctx, sink, stream, s.director, &s.ids, session.Config{
		Version:          s.cfg.Version,
		HandshakeTimeout: s.cfg.HandshakeTimeout,
		Log:              s.log,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("client handshake failed")
		c.Close(websocket.StatusPolicyViolation, "handshake failed")
		return
	}

	s.pump(ctx, c, sess, stream)
}

// pump drives the session's mailbox with inbound frames. It owns the
// receive half of the connection; the session owns the send half.
func (s *server) pump(ctx context.Context, c *websocket.Conn, sess *session.Session, stream session.Stream) {
	// If the session terminates on its own (invariant failure, write
	// error, shutdown), unblock the read below.
	go func() {
		<-sess.Done()
		c.Close(websocket.StatusNormalClosure, "session ended")
	}()

	for {
		frame, err := stream.Read(ctx)
		if err != nil {
			// Client went away or the session was torn down.
			sess.Close()
			return
		}
		if err := sess.HandleMessage(ctx, frame); err != nil {
			// Terminal for this session; the Done watcher closes the conn.
			return
		}
	}
}

type connSink struct {
	c *websocket.Conn
}

func (s *connSink) WriteText(ctx context.Context, data []byte) error {
	return s.c.Write(ctx, websocket.MessageText, data)
}

type connStream struct {
	c *websocket.Conn
}

func (s *connStream) Read(ctx context.Context) (session.Frame, error) {
	typ, data, err := s.c.Read(ctx)
	if err != nil {
		return session.Frame{}, err
	}
	return session.Frame{Text: typ == websocket.MessageText, Data: data}, nil
}
