package bag

// Handle is a per-borrower affinity cache. Goroutines have no portable
// identity and Go has no thread-local storage, so a Handle is an
// explicit value a caller creates once (typically one per long-lived
// worker goroutine) and reuses across Borrow/Requite calls.
//
// A Handle must not be shared between goroutines used concurrently:
// its list is unsynchronized by design, exactly as the thread-local
// list it replaces would be.
//
// The zero Handle{} is an empty cache ready for use; NewHandle and
// Bag.NewHandle return exactly that.
type Handle[T Item] struct {
	recent []T // most-recently-requited at the end
}

// NewHandle allocates a fresh, empty affinity cache bound to no
// particular bag (a Handle works against whichever Bag it is passed
// to, but using one Handle against multiple bags defeats its purpose).
func NewHandle[T Item]() *Handle[T] {
	return &Handle[T]{}
}

// take scans the handle's cache from the most-recently-pushed end
// backward, trying NOT_IN_USE -> IN_USE on each entry in turn. The list
// shrinks on every element visited regardless of outcome, so stale
// entries (already borrowed by someone else via the shared scan, or
// removed) never accumulate. Returns the zero T and false on a miss.
func (h *Handle[T]) take() (T, bool) {
	for len(h.recent) > 0 {
		last := len(h.recent) - 1
		item := h.recent[last]
		h.recent = h.recent[:last]

		if item.BagEntry().cas(StateNotInUse, StateInUse) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// push records item as recently requited by this handle's owner, to be
// preferred on the owner's next borrow.
func (h *Handle[T]) push(item T) {
	h.recent = append(h.recent, item)
}
