package bag

import "errors"

// Contract-violation errors: programming bugs that propagate
// synchronously to the caller and are never retried internally.
var (
	// ErrClosed is returned by Add once the bag has been closed.
	ErrClosed = errors.New("bag: closed to further adds")

	// ErrNotBorrowed is returned by Requite when the item being
	// requited was not in the IN_USE state.
	ErrNotBorrowed = errors.New("bag: value was returned to the bag that was not borrowed")

	// ErrNotHeld is returned by Remove when the item being removed was
	// neither borrowed (IN_USE) nor reserved (RESERVED).
	ErrNotHeld = errors.New("bag: attempt to remove an object that was not borrowed or reserved")

	// ErrVanished is returned by Remove when the item's state
	// transitioned to REMOVED but it was not found in the shared
	// registry. This should not happen; it indicates a bag invariant
	// was violated elsewhere.
	ErrVanished = errors.New("bag: attempt to remove an object that does not exist")

	// ErrNotReserved is returned by Unreserve when the item was not in
	// the RESERVED state.
	ErrNotReserved = errors.New("bag: attempt to relinquish an object that was not reserved")
)
