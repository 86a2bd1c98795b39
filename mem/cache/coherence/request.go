package coherence

import (
	"errors"

	"github.com/sarchlab/cohsim/mem"
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/quantity"
	"github.com/sarchlab/cohsim/timing"
)

// Reasons for rejecting an access. A rejected access changes nothing and the
// run can continue.
var (
	ErrAddressOutOfRange = mem.ErrAddressOutOfRange
	ErrInvalidChip       = errors.New("invalid chip ID")
	ErrInvalidCore       = errors.New("invalid core ID")
)

// AnyChip lets a request run on chip 0.
const AnyChip = -1

// AccessKind is either a read or a write.
type AccessKind int

// Defines the access kinds.
const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "write"
	}

	return "read"
}

// A Request asks a core to read or write a range of memory.
type Request struct {
	Kind    AccessKind
	ChipID  int
	CoreID  int
	Address uint64
	Size    quantity.Size
}

// Status tells if an access was served.
type Status int

// Defines the access statuses.
const (
	StatusCompleted Status = iota
	StatusRejected
)

func (s Status) String() string {
	if s == StatusRejected {
		return "rejected"
	}

	return "completed"
}

// An Outcome reports what an access did.
type Outcome struct {
	ID           string
	Request      Request
	Status       Status
	RejectReason error

	// ChipID is the chip that served the access.
	ChipID int
	Pages  []uint64

	// L2 and L3 list, in access order, the line slots touched at each level
	// and the state they were left in. L3 is only filled when HasL3 is set.
	L2    []cache.LineRecord
	L3    []cache.LineRecord
	HasL3 bool

	Events []timing.Event
	Total  quantity.Time
}

// Rejected returns true if the access was not served.
func (o Outcome) Rejected() bool {
	return o.Status == StatusRejected
}

// Count returns how many times an operation happened during the access.
func (o Outcome) Count(op timing.Op) uint64 {
	for _, e := range o.Events {
		if e.Op == op {
			return e.Count
		}
	}

	return 0
}
