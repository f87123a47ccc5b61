package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/kushgupta-hiver/mahjongd/internal/actor"
	"github.com/kushgupta-hiver/mahjongd/internal/engine"
	"github.com/kushgupta-hiver/mahjongd/internal/proto"
	"github.com/kushgupta-hiver/mahjongd/internal/session"
)

// ErrSeatTaken is returned by Join when the requested seat already has a
// player.
var ErrSeatTaken = errors.New("seat already taken")

// Match coordinates one active game. It holds the table state and the
// handles of every joined session; discards are validated against the
// rules and the resulting events broadcast to all seats. All state behind
// its mailbox.
type Match struct {
	id    string
	mbox  *actor.Mailbox
	rules engine.Rules
	log   zerolog.Logger

	// Guarded by the mailbox.
	state engine.State
	seats map[engine.Wind]session.Handle
}

func newMatch(id string, rules engine.Rules, log zerolog.Logger) *Match {
	return &Match{
		id:    id,
		mbox:  actor.New(64),
		rules: rules,
		log:   log.With().Str("match", id).Logger(),
		state: rules.NewGame(),
		seats: make(map[engine.Wind]session.Handle, len(engine.Winds)),
	}
}

func (m *Match) ID() string { return m.id }

// Join seats a session at the table and returns the initial table state.
// The joining session is not sent a player_joined event for itself; it
// learns the state from the join result.
func (m *Match) Join(ctx context.Context, h session.Handle, seat engine.Wind) (engine.State, error) {
	var state engine.State
	err := m.mbox.Call(ctx, func() error {
		if !seat.Valid() {
			return engine.ErrInvalidSeat
		}
		if _, taken := m.seats[seat]; taken {
			return ErrSeatTaken
		}

		m.broadcast(proto.Event{Type: proto.EventPlayerJoined, Seat: seat})
		m.seats[seat] = h
		m.log.Info().Stringer("session_id", h.ID()).Str("seat", string(seat)).Msg("player joined")

		state = snapshot(m.state)
		return nil
	})
	return state, err
}

// DiscardTile applies one discard. A rules rejection is returned to the
// caller; on success every seated session is pushed a tile_discarded event.
func (m *Match) DiscardTile(ctx context.Context, seat engine.Wind, tile engine.Tile) error {
	return m.mbox.Call(ctx, func() error {
		ns, err := m.rules.Discard(m.state, seat, tile)
		if err != nil {
			return err
		}
		m.state = ns

		t := tile
		m.broadcast(proto.Event{Type: proto.EventTileDiscarded, Seat: seat, Tile: &t})
		return nil
	})
}

// broadcast enqueues an event at every seated session. PushEvent does not
// wait for delivery, so a session that is mid-call into this match cannot
// deadlock us.
func (m *Match) broadcast(ev proto.Event) {
	for _, h := range m.seats {
		h.PushEvent(ev)
	}
}

// snapshot copies the state so callers never alias the match's own slices.
func snapshot(s engine.State) engine.State {
	out := s
	out.Discards = append([]engine.DiscardInfo(nil), s.Discards...)
	return out
}
