package bag

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Bag is a concurrent bag of reusable, stateful items of type T. See
// the package doc for the full design.
//
// A Bag's zero value is not usable; construct one with New.
type Bag[T Item] struct {
	registry  *registry[T]
	station   *station
	listener  Listener
	snapshots sync.Pool // *[]T scratch buffers for Values/DumpState

	closed atomic.Bool
}

// New constructs an empty Bag. listener may be nil, in which case
// Borrow never issues the advisory "please add an item" upcall.
func New[T Item](listener Listener) *Bag[T] {
	b := &Bag[T]{
		registry: newRegistry[T](),
		station:  newStation(),
		listener: listener,
	}
	b.snapshots.New = func() any {
		s := make([]T, 0, 16)
		return &s
	}
	return b
}

// NewHandle allocates a fresh affinity cache for use against this bag.
// Callers should create one Handle per long-lived worker and reuse it.
func (b *Bag[T]) NewHandle() *Handle[T] {
	return NewHandle[T]()
}

// Borrow returns an item whose state transitioned NOT_IN_USE -> IN_USE
// under this call, or the zero T and a nil error if timeout elapses
// before one becomes available — a timeout is an expected outcome, not
// a failure. If ctx is canceled while parked, Borrow returns a wrapped
// ctx.Err().
//
// handle may be nil: Borrow then skips the affinity fast path and goes
// straight to the shared scan, which is always correct, merely slower
// for this particular caller.
func (b *Bag[T]) Borrow(ctx context.Context, timeout time.Duration, handle *Handle[T]) (T, error) {
	var zero T

	// step 1: affinity fast path.
	if handle != nil {
		if item, ok := handle.take(); ok {
			return item, nil
		}
	}

	ctx, cancel := deadlineContext(ctx, timeout)
	defer cancel()

	for {
		// step 2: shared scan with sequence witness.
		witness := b.station.sequence()
		for _, item := range b.registry.snapshot() {
			if item.BagEntry().cas(StateNotInUse, StateInUse) {
				return item, nil
			}
		}
		if b.station.sequence() != witness {
			// a concurrent publisher produced a new chance: re-scan
			// without waiting.
			continue
		}

		// step 3: demand signal (advisory, must return promptly).
		if b.listener != nil {
			b.listener.AddBagItem(ctx)
		}

		// step 4: park until the sequence advances past witness, or
		// ctx (which already folds in the timeout) is done.
		if !b.station.acquire(ctx, witness) {
			if err := ctx.Err(); err != nil {
				if err == context.DeadlineExceeded {
					return zero, nil
				}
				return zero, fmt.Errorf("bag: borrow interrupted: %w", err)
			}
			return zero, nil
		}
		// woke because the sequence advanced: loop to step 2.
	}
}

// Requite returns a borrowed item to the bag. On success it pushes the
// item onto handle's affinity cache (if handle is non-nil) and wakes
// every parked borrower to re-scan. item must be non-nil; a nil item is a
// programming error and panics.
func (b *Bag[T]) Requite(item T, handle *Handle[T]) error {
	entry := item.BagEntry()
	if entry == nil {
		panic("bag: Requite called with an item that has no entry")
	}

	if !entry.cas(StateInUse, StateNotInUse) {
		return ErrNotBorrowed
	}

	if handle != nil {
		handle.push(item)
	}

	b.station.advance()
	return nil
}

// Add appends item to the bag for others to borrow, in whatever state
// the caller initialized it (normally NOT_IN_USE). It fails with
// ErrClosed if Close has already been called.
func (b *Bag[T]) Add(item T) error {
	if b.closed.Load() {
		return ErrClosed
	}
	b.registry.add(item)
	b.station.advance()
	return nil
}

// Remove permanently withdraws item from the bag. item must currently
// be held exclusively by the caller: either just borrowed (IN_USE) or
// reserved (RESERVED).
func (b *Bag[T]) Remove(item T) error {
	entry := item.BagEntry()

	if entry.cas(StateInUse, StateRemoved) || entry.cas(StateReserved, StateRemoved) {
		if !b.registry.remove(item) {
			return ErrVanished
		}
		return nil
	}
	return ErrNotHeld
}

// Reserve administratively holds item, excluding it from borrowing
// without checking it out. Reports whether the reservation succeeded
// (it fails silently, never erroring, if item was not NOT_IN_USE).
func (b *Bag[T]) Reserve(item T) bool {
	return item.BagEntry().cas(StateNotInUse, StateReserved)
}

// Unreserve releases a reservation made with Reserve, making item
// borrowable again. The sequence is bumped before the CAS so that a
// borrower which captured its witness between the bump and the state
// change still observes NOT_IN_USE on its next scan, rather than
// missing the window entirely.
func (b *Bag[T]) Unreserve(item T) error {
	b.station.bump()

	if !item.BagEntry().cas(StateReserved, StateNotInUse) {
		return ErrNotReserved
	}

	b.station.wake()
	return nil
}

// Values returns a fresh snapshot of every item currently in state.
// Only StateNotInUse and StateInUse are valid; any other value yields
// an empty slice. The result is best-effort: items may change state
// concurrently with or immediately after this call.
func (b *Bag[T]) Values(state State) []T {
	if state != StateNotInUse && state != StateInUse {
		return []T{}
	}

	buf := b.snapshots.Get().(*[]T)
	*buf = (*buf)[:0]
	defer func() {
		*buf = (*buf)[:0]
		b.snapshots.Put(buf)
	}()

	for _, item := range b.registry.snapshot() {
		if item.BagEntry().State() == state {
			*buf = append(*buf, item)
		}
	}

	out := make([]T, len(*buf))
	copy(out, *buf)
	return out
}

// GetCount returns the current count of items in the given state.
func (b *Bag[T]) GetCount(state State) int {
	n := 0
	for _, item := range b.registry.snapshot() {
		if item.BagEntry().State() == state {
			n++
		}
	}
	return n
}

// Size returns the total item count in the registry, regardless of
// state.
func (b *Bag[T]) Size() int {
	return b.registry.size()
}

// GetPendingQueue returns the current number of goroutines parked
// waiting for an item to become available.
func (b *Bag[T]) GetPendingQueue() int {
	return b.station.pending()
}

// DumpState logs one line per item with its current state. Diagnostic
// only: it races with concurrent transitions and offers no consistency
// guarantee across the items it logs.
func (b *Bag[T]) DumpState() {
	for _, item := range b.registry.snapshot() {
		logger.Info("dumpState", "item", fmt.Sprintf("%v", item), "state", item.BagEntry().State().String())
	}
}

// Close closes the bag to further Add calls. Existing borrowers and
// in-flight Requite calls are unaffected.
func (b *Bag[T]) Close() {
	b.closed.Store(true)
}
