package bag

import "sync/atomic"

// State is the logical state of an item held by a Bag.
type State int32

const (
	// StateNotInUse marks an item idle and eligible to be borrowed.
	StateNotInUse State = 0
	// StateInUse marks an item checked out to some borrower.
	StateInUse State = 1
	// StateRemoved marks an item permanently withdrawn. Terminal: no
	// outgoing transition exists from this state.
	StateRemoved State = -1
	// StateReserved marks an item administratively held: not
	// borrowable, not removed.
	StateReserved State = -2
)

func (s State) String() string {
	switch s {
	case StateNotInUse:
		return "NOT_IN_USE"
	case StateInUse:
		return "IN_USE"
	case StateRemoved:
		return "REMOVED"
	case StateReserved:
		return "RESERVED"
	default:
		return "UNKNOWN"
	}
}

// Entry is the single field a Bag owns on every item. Embed it (by
// value) in any type that should be poolable by a Bag.
//
// Entry must not be copied after first use.
type Entry struct {
	state atomic.Int32
}

// State reports the item's current state. The result may be stale the
// instant it is returned; it is a snapshot, not a lock.
func (e *Entry) State() State {
	return State(e.state.Load())
}

// cas attempts the single legal CAS transition from -> to.
func (e *Entry) cas(from, to State) bool {
	return e.state.CompareAndSwap(int32(from), int32(to))
}

// Item is the contract a Bag requires of its payload: exactly one
// embedded atomic state cell, accessible to the bag's protocol. Items
// may carry arbitrary caller payload beyond that cell.
type Item interface {
	BagEntry() *Entry
}
