package engine

import "errors"

// Wind is a player's fixed seat at the table.
type Wind string

const (
	East  Wind = "east"
	South Wind = "south"
	West  Wind = "west"
	North Wind = "north"
)

// Winds lists the seats in turn order.
var Winds = [4]Wind{East, South, West, North}

func (w Wind) Valid() bool {
	switch w {
	case East, South, West, North:
		return true
	}
	return false
}

// Next returns the seat that plays after w.
func (w Wind) Next() Wind {
	switch w {
	case East:
		return South
	case South:
		return West
	case West:
		return North
	default:
		return East
	}
}

type Suit string

const (
	Man   Suit = "man"
	Pin   Suit = "pin"
	Sou   Suit = "sou"
	Honor Suit = "honor"
)

// Tile is a single mahjong tile. Ranks run 1..9 for the numbered suits
// and 1..7 for honors (four winds then three dragons).
type Tile struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

func (t Tile) Valid() bool {
	switch t.Suit {
	case Man, Pin, Sou:
		return t.Rank >= 1 && t.Rank <= 9
	case Honor:
		return t.Rank >= 1 && t.Rank <= 7
	}
	return false
}

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrInvalidSeat = errors.New("invalid seat")
	ErrInvalidTile = errors.New("invalid tile")
)

// DiscardInfo records one tile discarded into the pond.
type DiscardInfo struct {
	Seat Wind `json:"seat"`
	Tile Tile `json:"tile"`
}

// State is the table state shared with every player in a match.
type State struct {
	Turn     Wind          `json:"turn"`
	Discards []DiscardInfo `json:"discards"`
	Seq      int           `json:"seq"`
}

// Rules applies moves to table state. Injected into the match controller
// so tests can stub it out.
type Rules interface {
	NewGame() State
	Discard(s State, seat Wind, t Tile) (State, error)
}

type rules struct{}

func NewRules() Rules { return rules{} }

func (rules) NewGame() State {
	return State{Turn: East}
}

func (rules) Discard(s State, seat Wind, t Tile) (State, error) {
	if !seat.Valid() {
		return s, ErrInvalidSeat
	}
	if !t.Valid() {
		return s, ErrInvalidTile
	}
	if seat != s.Turn {
		return s, ErrNotYourTurn
	}

	ns := s
	ns.Discards = append(append([]DiscardInfo(nil), s.Discards...), DiscardInfo{Seat: seat, Tile: t})
	ns.Turn = s.Turn.Next()
	ns.Seq = s.Seq + 1
	return ns, nil
}
