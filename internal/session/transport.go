package session

import (
	"context"

	"github.com/kushgupta-hiver/mahjongd/internal/engine"
	"github.com/kushgupta-hiver/mahjongd/internal/proto"
)

// Frame is one inbound transport message.
type Frame struct {
	Text bool
	Data []byte
}

// Sink is the outbound half of the transport. The session takes exclusive
// ownership of it at handshake time; all writes after that point happen
// from the session's mailbox.
type Sink interface {
	WriteText(ctx context.Context, data []byte) error
}

// Stream is the inbound half of the transport. It stays with the caller,
// which pumps frames into the session's mailbox.
type Stream interface {
	Read(ctx context.Context) (Frame, error)
}

// Account is what the game director hands back when a client's identity is
// resolved.
type Account struct {
	Credentials proto.Credentials
	Data        proto.AccountData
}

// Director is the capability handle a session holds on the game director.
// Every call crosses an actor boundary and may block until the director's
// mailbox reaches it.
type Director interface {
	CreateAccount(ctx context.Context) (Account, error)
	Authenticate(ctx context.Context, creds proto.Credentials) (Account, error)
	StartMatch(ctx context.Context) (Match, error)
}

// Match is the capability handle a session holds on one match controller.
type Match interface {
	Join(ctx context.Context, h Handle, seat engine.Wind) (engine.State, error)
	DiscardTile(ctx context.Context, seat engine.Wind, tile engine.Tile) error
}

// Handle is the capability a match controller holds on a session: just
// enough to identify it and push events at it. PushEvent enqueues without
// waiting so a controller broadcasting from its own mailbox can never
// deadlock against a session that is mid-call into it.
type Handle interface {
	ID() ID
	PushEvent(ev proto.Event)
}
