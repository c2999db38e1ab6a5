package vitals

import (
	"fmt"
	"sync"
	"testing"
)

func TestStoreKeepsStatePerSession(t *testing.T) {
	store := NewStore(newTestSimulator(9), 10)

	store.Sample("a")
	store.Sample("b")
	store.Sample("a")
	if got := store.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	store.Forget("a")
	if got := store.Len(); got != 1 {
		t.Fatalf("Len() after Forget = %d, want 1", got)
	}
	store.Forget("missing")
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(newTestSimulator(11), 2)

	store.Sample("a")
	store.Sample("b")
	store.Sample("a")
	store.Sample("c")

	if got := store.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if _, ok := store.sessions["b"]; ok {
		t.Fatal("session b should have been evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, ok := store.sessions[id]; !ok {
			t.Fatalf("session %s missing", id)
		}
	}
}

func TestStoreDefaultsMaxSessions(t *testing.T) {
	if got := NewStore(newTestSimulator(1), 0).maxSessions; got != DefaultMaxSessions {
		t.Fatalf("maxSessions = %d, want %d", got, DefaultMaxSessions)
	}
}

func TestStoreConcurrentSampling(t *testing.T) {
	store := NewStore(newTestSimulator(13), 8)
	cfg := DefaultConfig()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := store.Sample(fmt.Sprintf("session-%d", (g+i)%12))
				if s.PulseBPM < cfg.Pulse.Bounds.Min || s.PulseBPM > cfg.Pulse.Bounds.Max {
					t.Errorf("pulse %v out of bounds", s.PulseBPM)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if got := store.Len(); got > 8 {
		t.Fatalf("Len() = %d, want at most 8", got)
	}
}
