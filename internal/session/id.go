package session

import (
	"strconv"
	"sync/atomic"
)

// ID identifies one connected client session. IDs are issued by a strictly
// monotonic counter, so they stay unique for the lifetime of the process
// unless the counter wraps; no reclamation is attempted.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDGenerator issues session IDs. The zero value is ready to use and is
// shared process-wide; the counter is the only piece of mutable state in
// this package reached without a mailbox.
type IDGenerator struct {
	next atomic.Uint64
}

// Next atomically increments the counter and returns the previous value.
func (g *IDGenerator) Next() ID {
	return ID(g.next.Add(1) - 1)
}
