package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
)

func snapshot(v uint64) domain.SettingsSnapshot {
	s := domain.DefaultGameSettings()
	s.FlapStrength = float64(5 + v%15)
	return domain.SettingsSnapshot{Settings: s, Version: v, UpdatedAt: time.Now()}
}

func receive(t *testing.T, sub *Subscription) domain.SettingsSnapshot {
	t.Helper()
	select {
	case s := <-sub.C():
		return s
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for snapshot")
	}
	return domain.SettingsSnapshot{}
}

func TestHub_SubscribeQueuesCurrent(t *testing.T) {
	h := NewHub(zerolog.Nop())

	sub, err := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(3) })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := receive(t, sub); got.Version != 3 {
		t.Fatalf("expected initial version 3, got %d", got.Version)
	}
}

func TestHub_BroadcastInOrder(t *testing.T) {
	h := NewHub(zerolog.Nop(), WithBuffer(16))
	sub, _ := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(1) })

	for v := uint64(2); v <= 6; v++ {
		h.Broadcast(snapshot(v))
	}
	for want := uint64(1); want <= 6; want++ {
		if got := receive(t, sub); got.Version != want {
			t.Fatalf("expected version %d, got %d", want, got.Version)
		}
	}
}

func TestHub_SlowObserverDoesNotBlockAndKeepsNewest(t *testing.T) {
	var drops int
	h := NewHub(zerolog.Nop(), WithBuffer(2), WithDropCounter(func() { drops++ }))
	sub, _ := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(1) })

	done := make(chan struct{})
	go func() {
		for v := uint64(2); v <= 100; v++ {
			h.Broadcast(snapshot(v))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Broadcast blocked on a slow observer")
	}

	first, second := receive(t, sub), receive(t, sub)
	if first.Version != 99 || second.Version != 100 {
		t.Fatalf("expected the two newest versions, got %d and %d", first.Version, second.Version)
	}
	if drops == 0 {
		t.Fatalf("expected drops to be counted")
	}
}

func TestHub_CloseRemovesObserver(t *testing.T) {
	var mu sync.Mutex
	var counts []int
	h := NewHub(zerolog.Nop(), WithObserverGauge(func(n int) {
		mu.Lock()
		counts = append(counts, n)
		mu.Unlock()
	}))

	a, _ := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(1) })
	b, _ := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(1) })
	a.Close()
	a.Close()

	if h.Len() != 1 {
		t.Fatalf("expected 1 observer, got %d", h.Len())
	}
	select {
	case <-a.Done():
	default:
		t.Fatalf("expected closed subscription to be done")
	}

	h.Close()
	select {
	case <-b.Done():
	default:
		t.Fatalf("expected hub close to end subscriptions")
	}
	if _, err := h.Subscribe(func() domain.SettingsSnapshot { return snapshot(1) }); err == nil {
		t.Fatalf("expected Subscribe to fail after Close")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{1, 2, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("expected gauge updates %v, got %v", want, counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("expected gauge updates %v, got %v", want, counts)
		}
	}
}

func TestOriginPatterns(t *testing.T) {
	got := OriginPatterns([]string{"http://localhost:3000", " https://play.example.com ", "", "*.example.org"})
	want := []string{"localhost:3000", "play.example.com", "*.example.org"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
