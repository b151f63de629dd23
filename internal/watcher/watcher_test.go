package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDispatchesWriteEvent(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	events := make(chan Event, 1)
	handle, err := watcher.Watch(path, func(event Event) {
		select {
		case events <- event:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch path: %v", err)
	}
	defer handle.Close()

	if err := os.WriteFile(path, []byte("id,name\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	event, ok := waitForEvent(events)
	if !ok {
		t.Fatal("timed out waiting for write event")
	}
	if event.Path != path {
		t.Fatalf("expected path %q, got %q", path, event.Path)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	watcher, err := NewWithOptions(Options{Debounce: 150 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	events := make(chan Event, 16)
	handle, err := watcher.Watch(path, func(event Event) {
		events <- event
	})
	if err != nil {
		t.Fatalf("watch path: %v", err)
	}
	defer handle.Close()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := file.WriteString("1,Ann\n"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if _, ok := waitForEvent(events); !ok {
		t.Fatal("timed out waiting for settled event")
	}
	// The burst should have settled into a single delivery.
	select {
	case event := <-events:
		t.Fatalf("unexpected second event: %+v", event)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherHandleCloseStopsCallbacks(t *testing.T) {
	watcher, err := NewWithOptions(Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	events := make(chan Event, 16)
	handle, err := watcher.Watch(path, func(event Event) {
		events <- event
	})
	if err != nil {
		t.Fatalf("watch path: %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Fatalf("close handle: %v", err)
	}

	if err := os.WriteFile(path, []byte("late\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	select {
	case event := <-events:
		t.Fatalf("callback fired after handle close: %+v", event)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherWatchAfterClose(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("close watcher: %v", err)
	}
	if _, err := watcher.Watch("/nonexistent", func(Event) {}); err == nil {
		t.Fatal("watch after close should fail")
	}
}

func TestWatcherRejectsNilCallback(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if _, err := watcher.Watch("/tmp", nil); err == nil {
		t.Fatal("nil callback should be rejected")
	}
}

func waitForEvent(events <-chan Event) (Event, bool) {
	select {
	case event := <-events:
		return event, true
	case <-time.After(2 * time.Second):
		return Event{}, false
	}
}
