package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"tailsv/internal/metrics"
)

const defaultDebounce = 100 * time.Millisecond

// New creates a Watcher with default options.
func New() (*Watcher, error) {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Watcher with custom options.
func NewWithOptions(options Options) (*Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := options.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}

	instance := &Watcher{
		watcher:   notifier,
		callbacks: make(map[string][]callbackEntry),
		debouncer: newDebouncer(debounce),
		events:    make(chan fsnotify.Event, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
		logger:    options.Logger,
		registry:  registry,
	}

	instance.startForwarder(notifier)
	go instance.run()
	return instance, nil
}

// Watch registers a callback for events on path. The path is watched
// directly, so a removal of the watched file ends event delivery for it;
// callers treat removal as terminal.
func (watcher *Watcher) Watch(path string, callback func(Event)) (Handle, error) {
	if callback == nil {
		return nil, errNilCallback
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil, errClosed
	}
	firstForPath := len(watcher.callbacks[path]) == 0
	watcher.nextID++
	id := watcher.nextID
	watcher.callbacks[path] = append(watcher.callbacks[path], callbackEntry{
		id:       id,
		callback: callback,
	})
	watcher.mutex.Unlock()

	if firstForPath {
		if err := watcher.watcher.Add(path); err != nil {
			watcher.removeCallback(path, id)
			return nil, err
		}
		watcher.logger.Debug("watch added", map[string]string{"path": path})
	}
	return &watchHandle{watcher: watcher, path: path, id: id}, nil
}

// Close shuts down the watcher and stops event processing. After Close
// returns no further callbacks fire.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil
	}
	watcher.closed = true
	if watcher.debouncer != nil {
		watcher.debouncer.stop()
		watcher.debouncer = nil
	}
	watcher.mutex.Unlock()

	close(watcher.done)
	return watcher.watcher.Close()
}

func (watcher *Watcher) run() {
	for {
		select {
		case event := <-watcher.events:
			watcher.handleEvent(event)
		case err := <-watcher.errors:
			watcher.logger.Warn("watch backend error", map[string]string{
				"error": err.Error(),
			})
		case <-watcher.done:
			return
		}
	}
}

func (watcher *Watcher) startForwarder(source *fsnotify.Watcher) {
	go func() {
		for {
			select {
			case event, ok := <-source.Events:
				if !ok {
					return
				}
				select {
				case watcher.events <- event:
				case <-watcher.done:
					return
				}
			case err, ok := <-source.Errors:
				if !ok {
					return
				}
				select {
				case watcher.errors <- err:
				case <-watcher.done:
					return
				}
			case <-watcher.done:
				return
			}
		}
	}()
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	watcher.mutex.Lock()
	if watcher.closed || watcher.debouncer == nil {
		watcher.mutex.Unlock()
		return
	}
	if len(watcher.callbacks[event.Name]) == 0 {
		watcher.mutex.Unlock()
		return
	}

	entry := Event{
		Path:      event.Name,
		Op:        event.Op,
		Timestamp: time.Now().UTC(),
	}
	coalesced := watcher.debouncer.schedule(event.Name, entry, watcher.flush)
	if coalesced {
		watcher.registry.IncCoalescedNotifications()
	}
	watcher.mutex.Unlock()
}

func (watcher *Watcher) flush(path string) {
	watcher.mutex.Lock()
	if watcher.closed || watcher.debouncer == nil {
		watcher.mutex.Unlock()
		return
	}
	event, ok := watcher.debouncer.pop(path)
	if !ok {
		watcher.mutex.Unlock()
		return
	}
	entries := make([]callbackEntry, len(watcher.callbacks[path]))
	copy(entries, watcher.callbacks[path])
	watcher.mutex.Unlock()

	for _, entry := range entries {
		entry.callback(event)
	}
}

func (watcher *Watcher) removeCallback(path string, id uint64) {
	watcher.mutex.Lock()
	entries := watcher.callbacks[path]
	for index, entry := range entries {
		if entry.id == id {
			entries = append(entries[:index], entries[index+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(watcher.callbacks, path)
	} else {
		watcher.callbacks[path] = entries
	}
	lastForPath := len(entries) == 0
	closed := watcher.closed
	watcher.mutex.Unlock()

	if lastForPath && !closed {
		// Best-effort: the path may already be gone from the backend
		// if the file was removed.
		_ = watcher.watcher.Remove(path)
	}
}

type watchHandle struct {
	watcher *Watcher
	path    string
	id      uint64
}

func (handle *watchHandle) Close() error {
	if handle == nil || handle.watcher == nil {
		return nil
	}
	handle.watcher.removeCallback(handle.path, handle.id)
	handle.watcher = nil
	return nil
}
