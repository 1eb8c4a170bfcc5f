// Package bag implements a concurrent bag: a multi-producer,
// multi-consumer container specialized for pooling reusable, stateful
// resources (canonically, database connections) across many worker
// goroutines with minimal contention.
//
// Unlike a blocking queue, items are never physically removed from the
// bag on borrow. Each item carries an atomic state cell and moves
// between logical states (not-in-use, in-use, reserved, removed); the
// bag itself only ever holds a shared registry of items plus the
// bookkeeping needed to wake borrowers when new items, or newly
// returned items, become available.
//
// Each caller that wants a lock-free fast path should create one
// *Handle (via Bag.NewHandle) and reuse it across calls: the handle
// owns a small cache of recently-returned items, letting a caller
// avoid the shared scan entirely when its own last-returned item is
// still available.
package bag
