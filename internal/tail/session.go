package tail

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"

	"tailsv/internal/logging"
	"tailsv/internal/metrics"
	"tailsv/internal/record"
	"tailsv/internal/watcher"
)

// State is the lifecycle phase of a Session.
type State string

const (
	StateIdle     State = "idle"
	StateWatching State = "watching"
	StateRemoved  State = "removed"
	StateStopped  State = "stopped"
)

var (
	errNoPath  = errors.New("tail: no path configured")
	errNoWatch = errors.New("tail: no watch registration configured")
	errNoSink  = errors.New("tail: no sink configured")
	errStarted = errors.New("tail: session already started")
)

// Options configures a Session.
type Options struct {
	// Path is the file to watch. It must exist when Start is called.
	Path string
	// Delimiter separates fields within a record. Comma when zero.
	Delimiter rune
	// Watch provides filesystem change notifications.
	Watch watcher.Watch
	// Sink receives records, headers, info events and errors.
	Sink Sink
	// FS is the filesystem used for stat and reads. The OS filesystem
	// when nil.
	FS     afero.Fs
	Logger *logging.Logger
	// Registry receives counters. Defaults to metrics.Default.
	Registry *metrics.Registry
}

// Session watches one file for appended records and emits them to a
// sink. One Session per file; event processing is strictly serialized
// on a single goroutine.
type Session struct {
	path      string
	delimiter rune
	watch     watcher.Watch
	sink      Sink
	fs        afero.Fs
	reader    RangeReader
	logger    *logging.Logger
	registry  *metrics.Registry

	// store is owned by the event loop goroutine; offsetView mirrors
	// the consumed offset for concurrent readers.
	store      OffsetStore
	offsetView atomic.Int64
	// headerMode records whether the session began at offset zero;
	// only such sessions resolve a header. A shrink reset re-arms it.
	headerMode bool

	signals chan struct{}
	done    chan struct{}

	mutex   sync.Mutex
	state   State
	started bool
}

// NewSession validates options and returns an idle session.
func NewSession(options Options) (*Session, error) {
	if options.Path == "" {
		return nil, errNoPath
	}
	if options.Watch == nil {
		return nil, errNoWatch
	}
	if options.Sink == nil {
		return nil, errNoSink
	}
	delimiter := options.Delimiter
	if delimiter == 0 {
		delimiter = record.DefaultDelimiter
	}
	filesystem := options.FS
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}
	return &Session{
		path:      options.Path,
		delimiter: delimiter,
		watch:     options.Watch,
		sink:      options.Sink,
		fs:        filesystem,
		reader:    RangeReader{FS: filesystem},
		logger:    options.Logger,
		registry:  registry,
		// Capacity one: a signal arriving while another is queued is
		// redundant, the queued one re-stats and sees the newest size.
		signals: make(chan struct{}, 1),
		done:    make(chan struct{}),
		state:   StateIdle,
	}, nil
}

// Start stats the file, records its current size as the consumed
// offset (existing content is not replayed), registers for change
// notifications and launches the event loop. It fails fast when the
// file does not exist.
func (s *Session) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.started {
		s.mutex.Unlock()
		return errStarted
	}
	s.started = true
	s.mutex.Unlock()

	info, err := s.fs.Stat(s.path)
	if err != nil {
		return fmt.Errorf("tail: stat %s: %w", s.path, err)
	}
	s.store.AdvanceTo(info.Size())
	s.offsetView.Store(s.store.Offset())
	s.headerMode = info.Size() == 0

	handle, err := s.watch.Watch(s.path, func(watcher.Event) {
		select {
		case s.signals <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("tail: watch %s: %w", s.path, err)
	}

	s.setState(StateWatching)
	s.logger.Info("watch started", map[string]string{
		"path":   s.path,
		"offset": strconv.FormatInt(s.store.Offset(), 10),
	})

	go s.run(ctx, handle)
	return nil
}

// Done closes after the event loop has exited and the filesystem
// subscription has been released.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Offset is the consumed byte offset: the position below which every
// byte has been emitted as part of a complete record.
func (s *Session) Offset() int64 {
	return s.offsetView.Load()
}

func (s *Session) setState(state State) {
	s.mutex.Lock()
	s.state = state
	s.mutex.Unlock()
}

func (s *Session) run(ctx context.Context, handle watcher.Handle) {
	defer close(s.done)
	defer handle.Close()

	for {
		select {
		case <-ctx.Done():
			s.setState(StateStopped)
			s.logger.Info("watch stopped", map[string]string{"path": s.path})
			return
		case <-s.signals:
			if !s.process() {
				return
			}
		}
	}
}

// process handles one settled notification. It returns false when the
// session has reached a terminal state.
func (s *Session) process() bool {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.sink.OnInfo(Info{Kind: InfoRemoved})
			s.setState(StateRemoved)
			s.logger.Warn("watched file removed", map[string]string{"path": s.path})
			return false
		}
		s.sink.OnError(fmt.Errorf("tail: stat %s: %w", s.path, err))
		return true
	}
	size := info.Size()

	switch classifyGrowth(size, &s.store) {
	case signalNone:
		return true
	case signalShrink:
		s.registry.IncShrinkResets()
		s.store.Reset()
		s.offsetView.Store(0)
		s.headerMode = true
		s.sink.OnInfo(Info{Kind: InfoShrink, Size: size})
		s.logger.Info("watched file shrank, restarting from zero", map[string]string{
			"path": s.path,
			"size": strconv.FormatInt(size, 10),
		})
		return true
	}

	s.registry.IncGrowthEvents()
	start := s.store.ReadPosition()
	chunk, err := s.reader.ReadRange(s.path, start, size)
	if err != nil {
		// Includes the stat/read shrink race: report and retry on the
		// next event, which re-stats.
		s.sink.OnError(err)
		return true
	}
	s.registry.AddBytesRead(int64(len(chunk)))

	records, rest := SplitRecords(s.store.Fragment(), chunk)
	for _, line := range records {
		s.emit(line)
	}
	s.store.SetFragment(rest)
	s.store.AdvanceTo(size - int64(len(rest)))
	s.offsetView.Store(s.store.Offset())
	return true
}

func (s *Session) emit(line []byte) {
	fields, err := record.Parse(line, s.delimiter)
	if err != nil {
		s.registry.IncMalformedRecords()
		s.sink.OnError(err)
		return
	}
	if fields == nil {
		return
	}

	if s.headerMode && s.store.Header() == nil {
		s.store.SetHeader(fields)
		s.sink.OnHeader(fields)
		return
	}

	row := record.NewRow(fields)
	if header := s.store.Header(); header != nil {
		row = row.WithHeader(header)
	}
	s.registry.IncRecordsEmitted()
	s.sink.OnRecord(row)
}
