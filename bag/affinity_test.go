package bag

import "testing"

func TestHandleTakeEmptyCacheMisses(t *testing.T) {
	h := NewHandle[*testItem]()
	_, ok := h.take()
	if ok {
		t.Fatal("take() on an empty handle returned ok = true")
	}
}

func TestHandlePushThenTakeHits(t *testing.T) {
	h := NewHandle[*testItem]()
	item := newTestItem("a")

	h.push(item)
	got, ok := h.take()
	if !ok {
		t.Fatal("take() after push = false, want true")
	}
	if got != item {
		t.Fatalf("take() returned %v, want %v", got, item)
	}
	if got.State() != StateInUse {
		t.Fatalf("state after take = %v, want IN_USE", got.State())
	}
}

func TestHandleTakeSkipsStaleEntriesAndShrinks(t *testing.T) {
	h := NewHandle[*testItem]()
	stale := newTestItem("stale")
	fresh := newTestItem("fresh")

	// stale was already borrowed elsewhere by the time it's tried.
	stale.cas(StateNotInUse, StateInUse)

	h.push(fresh)
	h.push(stale)

	got, ok := h.take()
	if !ok {
		t.Fatal("take() = false, want true (fresh should still be available)")
	}
	if got != fresh {
		t.Fatalf("take() returned %v, want %v", got, fresh)
	}

	// stale was discarded along the way, not left behind.
	if _, ok := h.take(); ok {
		t.Fatal("take() found a second hit; stale entry should have been discarded, not returned")
	}
}

func TestHandlePrefersMostRecentlyPushed(t *testing.T) {
	h := NewHandle[*testItem]()
	first := newTestItem("first")
	second := newTestItem("second")

	h.push(first)
	h.push(second)

	got, ok := h.take()
	if !ok {
		t.Fatal("take() = false, want true")
	}
	if got != second {
		t.Fatalf("take() returned %v, want the most recently pushed item %v", got, second)
	}
}
