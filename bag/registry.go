package bag

import (
	"sync"
	"sync/atomic"
)

// registry is the shared, append-mostly collection of every item known
// to a Bag, regardless of state. Readers never block: they take a
// snapshot pointer to the current backing slice and iterate that,
// which either includes or excludes each concurrent writer's change
// but is always internally consistent. Writers (add/remove) serialize
// against each other with a plain mutex, since they are expected to be
// rare relative to borrows.
type registry[T Item] struct {
	mu    sync.Mutex
	items atomic.Pointer[[]T]
}

func newRegistry[T Item]() *registry[T] {
	r := &registry[T]{}
	empty := make([]T, 0)
	r.items.Store(&empty)
	return r
}

// snapshot returns the current backing slice. Callers must not mutate
// it; it is shared with concurrent readers.
func (r *registry[T]) snapshot() []T {
	return *r.items.Load()
}

// add appends item to the registry, copy-on-write.
func (r *registry[T]) add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.items.Load()
	next := make([]T, len(old)+1)
	copy(next, old)
	next[len(old)] = item
	r.items.Store(&next)
}

// remove deletes item from the registry, copy-on-write. Reports
// whether item was found.
func (r *registry[T]) remove(item T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.items.Load()
	target := item.BagEntry()
	idx := -1
	for i, it := range old {
		if it.BagEntry() == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	next := make([]T, 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	r.items.Store(&next)
	return true
}

// size is the total item count in the registry.
func (r *registry[T]) size() int {
	return len(r.snapshot())
}
