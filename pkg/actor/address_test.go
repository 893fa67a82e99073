package actor

import "testing"

func TestAddress_RoundTrip(t *testing.T) {
	addr := NewAddress(7, 12345)
	if got := addr.WorkerIndex(); got != 7 {
		t.Fatalf("WorkerIndex() = %d, want 7", got)
	}
	if got := addr.LocalID(); got != 12345 {
		t.Fatalf("LocalID() = %d, want 12345", got)
	}
	if addr.IsZero() {
		t.Fatal("IsZero() = true, want false")
	}
}

func TestAddress_Zero(t *testing.T) {
	var addr Address
	if !addr.IsZero() {
		t.Fatal("IsZero() = false, want true")
	}
}

func TestAddress_LocalIDMaskedTo24Bits(t *testing.T) {
	addr := NewAddress(1, 0x01000001)
	if got := addr.LocalID(); got != 1 {
		t.Fatalf("LocalID() = %#x, want 1 (masked to 24 bits)", got)
	}
	if got := addr.WorkerIndex(); got != 1 {
		t.Fatalf("WorkerIndex() = %d, want 1", got)
	}
}

func TestValidWorkerIndex(t *testing.T) {
	cases := []struct {
		idx  uint8
		n    int
		want bool
	}{
		{0, 4, false},
		{1, 4, true},
		{4, 4, true},
		{5, 4, false},
	}
	for _, c := range cases {
		if got := ValidWorkerIndex(c.idx, c.n); got != c.want {
			t.Errorf("ValidWorkerIndex(%d, %d) = %v, want %v", c.idx, c.n, got, c.want)
		}
	}
}
