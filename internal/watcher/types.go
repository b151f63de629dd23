package watcher

import (
	"sync"
	"time"

	"tailsv/internal/logging"
	"tailsv/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Event represents a settled filesystem change on a watched path.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Handle releases watcher resources for a registration.
type Handle interface {
	Close() error
}

// Watch registers a callback for filesystem events on a path.
type Watch interface {
	Watch(path string, callback func(Event)) (Handle, error)
}

// Options controls watcher behavior.
type Options struct {
	Logger   *logging.Logger
	Debounce time.Duration
	Registry *metrics.Registry
}

type callbackEntry struct {
	id       uint64
	callback func(Event)
}

// Watcher is the fsnotify-backed implementation of Watch. Raw
// notification bursts on a path are debounced so a consumer sees one
// settled event per burst rather than one per write syscall.
type Watcher struct {
	watcher   *fsnotify.Watcher
	mutex     sync.Mutex
	callbacks map[string][]callbackEntry
	debouncer *debouncer
	events    chan fsnotify.Event
	errors    chan error
	done      chan struct{}
	closed    bool
	logger    *logging.Logger
	registry  *metrics.Registry
	nextID    uint64
}
