// Package idx generates the ULID request identifiers attached to outgoing
// call logs. ULIDs sort by creation time, which keeps log lines of
// concurrent calls easy to order.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID.
const Zero ID = ""

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID for the current time. Safe for concurrent use.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID carrying t, useful in tests.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }
