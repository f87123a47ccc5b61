package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/kushgupta-hiver/mahjongd/internal/actor"
	"github.com/kushgupta-hiver/mahjongd/internal/engine"
	"github.com/kushgupta-hiver/mahjongd/internal/proto"
)

// ServerVersion is the protocol version this build speaks. Clients must
// present exactly this version during the handshake; no range negotiation
// exists.
const ServerVersion = "0.1.0"

// mailboxSize bounds how many pending operations (inbound requests plus
// pushed events) a session can queue before senders block.
const mailboxSize = 64

// Phase is the session's protocol state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseInMatch Phase = "in_match"
)

// Config tunes a session. The zero value uses ServerVersion and waits
// forever for the handshake frame.
type Config struct {
	// Version overrides the advertised server version. Tests use this to
	// provoke mismatches.
	Version string
	// HandshakeTimeout bounds the wait for the client's handshake request.
	// Zero disables the bound.
	HandshakeTimeout time.Duration
	// Log is the parent logger; the session derives a child tagged with
	// its id.
	Log zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = ServerVersion
	}
	return c
}

// Session is the server-side representative of one connected client. It
// owns the outbound transport half exclusively and serializes everything
// it does through one mailbox: inbound requests and pushed events for the
// same session never run concurrently.
type Session struct {
	id       ID
	sink     Sink
	director Director
	mbox     *actor.Mailbox
	log      zerolog.Logger

	// phase and match are only touched from inside the mailbox.
	phase Phase
	match Match
}

// PerformHandshake runs the fixed initial exchange over a fresh transport
// connection. On success it spawns the session actor and returns its
// handle; the stream stays with the caller, which must pump subsequent
// frames into HandleMessage. Any failure aborts connection setup; the
// transport is not retried here.
func PerformHandshake(ctx context.Context, sink Sink, stream Stream, director Director, gen *IDGenerator, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	log := cfg.Log

	log.Info().Msg("starting client handshake")

	// Some client runtimes do not recognize the connection as open until
	// the server sends something, so prime it with one throwaway frame.
	// Interoperability workaround, not part of the logical protocol.
	if err := sink.WriteText(ctx, []byte("ping")); err != nil {
		return nil, fmt.Errorf("send initial ping: %w", err)
	}

	req, err := readHandshake(ctx, sink, stream, cfg)
	if err != nil {
		return nil, err
	}

	// Exact-equality version check. Strict reject is a deliberate policy:
	// there is no compatibility window to negotiate.
	if req.ClientVersion != cfg.Version {
		_ = writeJSON(ctx, sink, proto.NewError(proto.CodeVersionMismatch,
			fmt.Sprintf("server version is %s", cfg.Version)))
		return nil, fmt.Errorf("%w: client sent %q", ErrVersionMismatch, req.ClientVersion)
	}

	// Resolve the account: fresh clients get a new account, returning
	// clients are looked up by their token.
	var account Account
	if req.Credentials == nil {
		account, err = director.CreateAccount(ctx)
		if err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
	} else {
		account, err = director.Authenticate(ctx, *req.Credentials)
		if err != nil {
			_ = writeJSON(ctx, sink, proto.NewError(proto.CodeBadCredentials, "unknown credentials"))
			return nil, fmt.Errorf("%w: %s", ErrBadCredentials, err)
		}
	}

	log.Debug().Str("account", account.Data.ID).Msg("verified handshake request, completing client connection")

	resp := proto.HandshakeResponse{
		ServerVersion:  cfg.Version,
		NewCredentials: &account.Credentials,
		AccountData:    account.Data,
	}
	if err := writeJSON(ctx, sink, resp); err != nil {
		return nil, fmt.Errorf("send handshake response: %w", err)
	}

	s := &Session{
		id:       gen.Next(),
		sink:     sink,
		director: director,
		mbox:     actor.New(mailboxSize),
		phase:    PhaseIdle,
	}
	s.log = log.With().Stringer("session_id", s.id).Logger()
	s.log.Info().Msg("client connected")
	return s, nil
}

func readHandshake(ctx context.Context, sink Sink, stream Stream, cfg Config) (proto.HandshakeRequest, error) {
	var req proto.HandshakeRequest

	readCtx := ctx
	if cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, cfg.HandshakeTimeout)
		defer cancel()
	}

	frame, err := stream.Read(readCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return req, ErrHandshakeTimeout
		}
		return req, fmt.Errorf("%w: %s", ErrClientGone, err)
	}
	if !frame.Text {
		_ = writeJSON(ctx, sink, proto.NewError(proto.CodeMalformed, "handshake must be a text frame"))
		return req, fmt.Errorf("%w: non-text frame", ErrMalformedHandshake)
	}
	if err := json.Unmarshal(frame.Data, &req); err != nil {
		_ = writeJSON(ctx, sink, proto.NewError(proto.CodeMalformed, "bad handshake request"))
		return req, fmt.Errorf("%w: %s", ErrMalformedHandshake, err)
	}
	if !semver.IsValid("v" + req.ClientVersion) {
		_ = writeJSON(ctx, sink, proto.NewError(proto.CodeMalformed, "client_version is not a semantic version"))
		return req, fmt.Errorf("%w: client_version %q", ErrMalformedHandshake, req.ClientVersion)
	}
	return req, nil
}

// ID returns the session's identifier, assigned once at construction.
func (s *Session) ID() ID { return s.id }

// Done is closed when the session task has terminated.
func (s *Session) Done() <-chan struct{} { return s.mbox.Done() }

// Err reports why the session terminated; nil while it is still running.
func (s *Session) Err() error { return s.mbox.Err() }

// Close terminates the session task. Used by the transport layer when the
// inbound half of the connection goes away.
func (s *Session) Close() {
	s.mbox.Stop(ErrSessionClosed)
}

// Phase reports the session's current protocol phase. It goes through the
// mailbox like every other operation, so it observes a consistent state.
func (s *Session) Phase(ctx context.Context) (Phase, error) {
	var p Phase
	err := s.mbox.Call(ctx, func() error {
		p = s.phase
		return nil
	})
	return p, err
}

// HandleMessage processes one inbound transport frame. Request-level
// failures (malformed frames, protocol-state violations, rejections from a
// match controller) are reported to the client and return nil; a non-nil
// return means the session has terminated and the pump should stop.
func (s *Session) HandleMessage(ctx context.Context, frame Frame) error {
	return s.mbox.Call(ctx, func() error {
		return s.handleMessage(ctx, frame)
	})
}

func (s *Session) handleMessage(ctx context.Context, frame Frame) error {
	if !frame.Text {
		return s.reportError(ctx, proto.CodeMalformed, "expected a text frame")
	}

	var req proto.ClientRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil {
		return s.reportError(ctx, proto.CodeMalformed, "bad request")
	}

	s.log.Info().Str("request", req.Type).Msg("handling incoming request")

	switch req.Type {
	case proto.RequestStartMatch:
		return s.startMatch(ctx)
	case proto.RequestDiscardTile:
		return s.discardTile(ctx, req)
	default:
		return s.reportError(ctx, proto.CodeMalformed, fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func (s *Session) startMatch(ctx context.Context) error {
	if s.phase == PhaseInMatch {
		return s.reportError(ctx, proto.CodeAlreadyInMatch, ErrAlreadyInMatch.Error())
	}

	s.log.Debug().Msg("asking the game director to start a match")

	m, err := s.director.StartMatch(ctx)
	if err != nil {
		return s.reportError(ctx, proto.CodeMatchFailed, err.Error())
	}

	// Join as the East player, handing over our own handle so the
	// controller can push events back at us.
	state, err := m.Join(ctx, s, engine.East)
	if err != nil {
		return s.reportError(ctx, proto.CodeMatchFailed, err.Error())
	}

	if err := writeJSON(ctx, s.sink, proto.StartMatchResponse{State: state}); err != nil {
		return s.terminate(err)
	}

	s.log.Debug().Msg("match started, joined as the east player")
	s.phase = PhaseInMatch
	s.match = m
	return nil
}

func (s *Session) discardTile(ctx context.Context, req proto.ClientRequest) error {
	if s.phase != PhaseInMatch {
		return s.reportError(ctx, proto.CodeNotInMatch, ErrNotInMatch.Error())
	}
	if req.Tile == nil {
		return s.reportError(ctx, proto.CodeMalformed, "discard_tile requires a tile")
	}

	if err := s.match.DiscardTile(ctx, req.Player, *req.Tile); err != nil {
		return s.reportError(ctx, proto.CodeDiscardRejected, err.Error())
	}
	return nil
}

// PushEvent delivers a match event to the client outside the
// request/response flow. Callable only by a match controller holding this
// session's handle, and only while the session is in a match: an event
// arriving while idle is an invariant violation that terminates the
// session task rather than being dropped.
func (s *Session) PushEvent(ev proto.Event) {
	s.mbox.Cast(func() error {
		if s.phase != PhaseInMatch {
			s.log.Error().Str("event", ev.Type).Msg("match event received while not in a match")
			return s.terminate(ErrEventNotInMatch)
		}

		s.log.Debug().Str("event", ev.Type).Msg("sending a server event to the client")

		if err := writeJSON(context.Background(), s.sink, ev); err != nil {
			// Write failure means the client is gone.
			return s.terminate(err)
		}
		return nil
	})
}

// reportError sends a request-level error frame. The session survives; only
// a failure to write the frame itself is terminal.
func (s *Session) reportError(ctx context.Context, code, detail string) error {
	s.log.Warn().Str("code", code).Str("detail", detail).Msg("rejecting client request")
	if err := writeJSON(ctx, s.sink, proto.NewError(code, detail)); err != nil {
		return s.terminate(err)
	}
	return nil
}

func (s *Session) terminate(cause error) error {
	s.log.Info().Err(cause).Msg("session terminating")
	s.mbox.Stop(cause)
	return cause
}

func writeJSON(ctx context.Context, sink Sink, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	return sink.WriteText(ctx, data)
}
