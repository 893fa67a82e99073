package queue

import "testing"

func TestQueue_PushReturnsLength(t *testing.T) {
	q := New[int]()
	if n := q.Push(1); n != 1 {
		t.Fatalf("Push() = %d, want 1", n)
	}
	if n := q.Push(2); n != 2 {
		t.Fatalf("Push() = %d, want 2", n)
	}
}

func TestQueue_PopFrontOrder(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.PopFront()
		if !ok {
			t.Fatalf("PopFront() ok = false, want true")
		}
		if got != want {
			t.Fatalf("PopFront() = %q, want %q", got, want)
		}
	}
	if _, ok := q.PopFront(); ok {
		t.Fatal("PopFront() on empty queue ok = true, want false")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	batch := q.Drain()
	if len(batch) != 3 {
		t.Fatalf("Drain() len = %d, want 3", len(batch))
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after Drain() = %d, want 0", q.Len())
	}
	if batch := q.Drain(); batch != nil {
		t.Fatalf("Drain() on empty queue = %v, want nil", batch)
	}
}

func TestQueue_DrainThenPushDoesNotAliasOldBatch(t *testing.T) {
	q := New[int]()
	q.Push(1)
	batch := q.Drain()
	q.Push(2)

	if len(batch) != 1 || batch[0] != 1 {
		t.Fatalf("first batch = %v, want [1]", batch)
	}
	if got := q.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}
