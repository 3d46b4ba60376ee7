package richtext

import (
	"strconv"
	"sync/atomic"

	"github.com/hashicorp/go-uuid"
)

// ID identifies a run. IDs are opaque; they are unique within a sequence.
type ID string

// IDSource mints fresh run identifiers. Implementations have to be safe for
// concurrent use.
type IDSource interface {
	NextID() ID
}

// Counter is an IDSource handing out ids from a process-wide monotonic counter,
// prefixed by a fixed string.
type Counter struct {
	Prefix string
	n      atomic.Uint64
}

// NextID is part of interface IDSource.
func (c *Counter) NextID() ID {
	return ID(c.Prefix + strconv.FormatUint(c.n.Add(1), 36))
}

// defaultIDs is shared by all engines which do not set their own IDSource.
var defaultIDs = &Counter{Prefix: "seg-"}

type uuidSource struct {
	fallback *Counter
}

// UUIDs returns an IDSource minting random (version 4) UUIDs. If the system's
// random source fails, it falls back to a counter.
func UUIDs() IDSource {
	return uuidSource{fallback: &Counter{Prefix: "seg-x"}}
}

func (u uuidSource) NextID() ID {
	id, err := uuid.GenerateUUID()
	if err != nil {
		tracer().Errorf("cannot generate UUID: %v", err)
		return u.fallback.NextID()
	}
	return ID(id)
}
