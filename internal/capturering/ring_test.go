package capturering

import "testing"

func TestPopEmpty(t *testing.T) {
	r := New(16)
	if _, ok := r.Pop(make([]int16, MaxSamples)); ok {
		t.Fatal("expected ok=false on empty ring")
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	r := New(16)
	in := []int16{1, 2, 3, 4}
	if ok := r.Push(in); !ok {
		t.Fatal("push failed")
	}
	dst := make([]int16, MaxSamples)
	n, ok := r.Pop(dst)
	if !ok || n != len(in) {
		t.Fatalf("pop: n=%d ok=%v", n, ok)
	}
	for i, v := range in {
		if dst[i] != v {
			t.Fatalf("sample %d: got %d want %d", i, dst[i], v)
		}
	}
}

func TestPushRejectsOversizedFrame(t *testing.T) {
	r := New(16)
	if ok := r.Push(make([]int16, MaxSamples+1)); ok {
		t.Fatal("expected rejection of oversized frame")
	}
}

func TestPushRejectsEmptyFrame(t *testing.T) {
	r := New(16)
	if ok := r.Push(nil); ok {
		t.Fatal("expected rejection of empty frame")
	}
}

func TestFullRingDropsExcessAndSurvivorsPopInFIFOOrder(t *testing.T) {
	const cap = 16
	r := New(cap)
	for i := 0; i < cap; i++ {
		if ok := r.Push([]int16{int16(i)}); !ok {
			t.Fatalf("push %d: expected success while ring has room", i)
		}
	}
	// K+1th push must be dropped: no pops have happened yet.
	if ok := r.Push([]int16{999}); ok {
		t.Fatal("expected the capacity+1th push to be dropped")
	}
	if got := r.Len(); got != cap {
		t.Fatalf("Len: got %d want %d", got, cap)
	}
	dst := make([]int16, MaxSamples)
	for i := 0; i < cap; i++ {
		n, ok := r.Pop(dst)
		if !ok || n != 1 || dst[0] != int16(i) {
			t.Fatalf("pop %d: n=%d ok=%v dst[0]=%d", i, n, ok, dst[0])
		}
	}
	if _, ok := r.Pop(dst); ok {
		t.Fatal("expected ring empty after draining all survivors")
	}
}

func TestPushAfterDrainReusesFreedSlot(t *testing.T) {
	r := New(16)
	r.Push([]int16{1})
	dst := make([]int16, MaxSamples)
	r.Pop(dst)
	for i := 0; i < 16; i++ {
		if ok := r.Push([]int16{int16(100 + i)}); !ok {
			t.Fatalf("push %d: expected room after drain", i)
		}
	}
	if ok := r.Push([]int16{1}); ok {
		t.Fatal("expected ring full again after refilling freed slot")
	}
}

func TestNewEnforcesMinimumCapacity(t *testing.T) {
	r := New(1)
	for i := 0; i < 16; i++ {
		if ok := r.Push([]int16{int16(i)}); !ok {
			t.Fatalf("push %d: capacity should have been raised to 16", i)
		}
	}
}
