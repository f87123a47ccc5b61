package proto

import "github.com/kushgupta-hiver/mahjongd/internal/engine"

// All payloads are UTF-8 JSON text frames, one frame per logical message.
// Server-to-client and client-to-server messages carry a "type" discriminator
// except the handshake pair, which is a fixed two-message exchange.

// Credentials identifies an existing account.
type Credentials struct {
	Token string `json:"token"`
}

// AccountData is the account state shared with the client at handshake.
type AccountData struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
}

// ---- Handshake ----

type HandshakeRequest struct {
	ClientVersion string       `json:"client_version"`
	Credentials   *Credentials `json:"credentials"`
}

type HandshakeResponse struct {
	ServerVersion  string       `json:"server_version"`
	NewCredentials *Credentials `json:"new_credentials"`
	AccountData    AccountData  `json:"account_data"`
}

// ---- Client -> Server ----

const (
	RequestStartMatch  = "start_match"
	RequestDiscardTile = "discard_tile"
)

// ClientRequest is the envelope for all post-handshake client requests.
type ClientRequest struct {
	Type   string       `json:"type"`             // "start_match" | "discard_tile"
	Player engine.Wind  `json:"player,omitempty"` // for "discard_tile"
	Tile   *engine.Tile `json:"tile,omitempty"`   // for "discard_tile"
}

// ---- Server -> Client ----

type StartMatchResponse struct {
	State engine.State `json:"state"`
}

const (
	EventPlayerJoined  = "player_joined"
	EventTileDiscarded = "tile_discarded"
)

// Event is pushed to the client outside the request/response flow.
type Event struct {
	Type string       `json:"type"` // "player_joined" | "tile_discarded"
	Seat engine.Wind  `json:"seat,omitempty"`
	Tile *engine.Tile `json:"tile,omitempty"`
}

// Error codes reported to the client. Request-level only; a session is never
// terminated by sending one of these.
const (
	CodeMalformed       = "malformed"
	CodeVersionMismatch = "version_mismatch"
	CodeBadCredentials  = "bad_credentials"
	CodeNotInMatch      = "not_in_match"
	CodeAlreadyInMatch  = "already_in_match"
	CodeMatchFailed     = "match_failed"
	CodeDiscardRejected = "discard_rejected"
)

type Error struct {
	Type   string `json:"type"` // always "error"
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// NewError builds an error frame ready for serialization.
func NewError(code, detail string) Error {
	return Error{Type: "error", Code: code, Detail: detail}
}
