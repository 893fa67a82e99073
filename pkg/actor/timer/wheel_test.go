package timer

import "testing"

func TestWheel_RepeatFiresOnAdvance(t *testing.T) {
	w := New()
	id := w.Repeat(0, 10, 0, 42)

	var fired []uint64
	w.Advance(9, func(timerID uint64, owner uint32, isLast bool) {
		fired = append(fired, timerID)
	})
	if len(fired) != 0 {
		t.Fatalf("fired before due = %v, want none", fired)
	}

	w.Advance(10, func(timerID uint64, owner uint32, isLast bool) {
		fired = append(fired, timerID)
		if owner != 42 {
			t.Errorf("owner = %d, want 42", owner)
		}
		if isLast {
			t.Error("isLast = true for a forever timer, want false")
		}
	})
	if len(fired) != 1 || fired[0] != id {
		t.Fatalf("fired = %v, want [%d]", fired, id)
	}
}

func TestWheel_BoundedRepeatIsLastOnFinalFire(t *testing.T) {
	w := New()
	w.Repeat(0, 10, 3, 1)

	var fires []bool
	advance := func(now int64) {
		w.Advance(now, func(_ uint64, _ uint32, isLast bool) {
			fires = append(fires, isLast)
		})
	}
	advance(10)
	advance(20)
	advance(30)

	if len(fires) != 3 {
		t.Fatalf("fire count = %d, want 3", len(fires))
	}
	for i, isLast := range fires {
		want := i == 2
		if isLast != want {
			t.Errorf("fire %d isLast = %v, want %v", i, isLast, want)
		}
	}
}

func TestWheel_ForeverTimerNeverReportsIsLast(t *testing.T) {
	w := New()
	w.Repeat(0, 10, 0, 1)

	var sawLast bool
	for now := int64(10); now <= 1000; now += 10 {
		w.Advance(now, func(_ uint64, _ uint32, isLast bool) {
			if isLast {
				sawLast = true
			}
		})
	}
	if sawLast {
		t.Fatal("forever timer reported isLast = true at some point, want never")
	}
}

func TestWheel_MultipleIntervalsInOneAdvance(t *testing.T) {
	w := New()
	w.Repeat(0, 10, 0, 1)

	count := 0
	w.Advance(35, func(uint64, uint32, bool) { count++ })
	if count != 3 {
		t.Fatalf("fire count in one Advance = %d, want 3 (at 10, 20, 30)", count)
	}
}

func TestWheel_RemoveIsIdempotent(t *testing.T) {
	w := New()
	id := w.Repeat(0, 10, 0, 1)
	w.Remove(id)
	w.Remove(id) // no panic

	count := 0
	w.Advance(100, func(uint64, uint32, bool) { count++ })
	if count != 0 {
		t.Fatalf("fire count after Remove = %d, want 0", count)
	}
}

func TestWheel_ExhaustedTimerIsDeleted(t *testing.T) {
	w := New()
	w.Repeat(0, 10, 1, 1)
	w.Advance(10, func(uint64, uint32, bool) {})

	count := 0
	w.Advance(1000, func(uint64, uint32, bool) { count++ })
	if count != 0 {
		t.Fatalf("fire count after exhaustion = %d, want 0", count)
	}
}
