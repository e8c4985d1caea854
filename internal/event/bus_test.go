package event

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(DatasetImported, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish(Event{Type: DatasetImported, Data: map[string]any{"bands": 3}})
	bus.Publish(Event{Type: RecommenderRebuilt}) // no subscriber, should be ignored

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for event, got %d", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0].Type != DatasetImported {
		t.Errorf("type = %q", received[0].Type)
	}
	if received[0].Timestamp.IsZero() {
		t.Error("timestamp should be set by Publish")
	}
}

func TestPanickingHandlerDoesNotKillBus(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	done := make(chan struct{})
	bus.Subscribe(RecommenderRebuilt, func(e Event) {
		panic("boom")
	})
	bus.Subscribe(RecommenderRebuilt, func(e Event) {
		close(done)
	})

	bus.Publish(Event{Type: RecommenderRebuilt})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran after first panicked")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	bus := NewBus(testLogger(), 1)
	go bus.Start()
	bus.Stop()
	bus.Stop()
}
