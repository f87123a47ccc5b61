package session

import "errors"

var (
	// ErrMalformedHandshake is returned when the handshake frame is not
	// valid UTF-8 JSON for a handshake request.
	ErrMalformedHandshake = errors.New("malformed handshake request")
	// ErrVersionMismatch is returned when the client's version is not
	// exactly equal to the server's.
	ErrVersionMismatch = errors.New("client version does not match server version")
	// ErrBadCredentials is returned when the presented credentials do not
	// resolve to a known account.
	ErrBadCredentials = errors.New("unknown credentials")
	// ErrHandshakeTimeout is returned when the client never sends its
	// handshake request within the configured window.
	ErrHandshakeTimeout = errors.New("timed out waiting for handshake request")
	// ErrClientGone is returned when the transport closes mid-handshake.
	ErrClientGone = errors.New("client disconnected during handshake")

	// ErrNotInMatch rejects a match-scoped request from an idle session.
	ErrNotInMatch = errors.New("not in a match")
	// ErrAlreadyInMatch rejects starting a match from a session that is
	// already in one.
	ErrAlreadyInMatch = errors.New("already in a match")

	// ErrEventNotInMatch records the invariant violation of a match event
	// arriving while the session is idle. It is fatal to the session task:
	// it signals a bug in a match controller, not client misbehavior.
	ErrEventNotInMatch = errors.New("match event received while not in a match")

	// ErrSessionClosed is the termination cause of an orderly shutdown.
	ErrSessionClosed = errors.New("session closed")
)
