package tail

import "tailsv/internal/record"

// InfoKind identifies a non-record notification from a session.
type InfoKind string

const (
	// InfoShrink reports that the watched file lost bytes below the
	// consumed position; the session has reset and will treat future
	// content as fresh.
	InfoShrink InfoKind = "shrink"
	// InfoRemoved reports that the watched file is gone. Terminal.
	InfoRemoved InfoKind = "removed"
)

// Info is an informational event delivered alongside records.
type Info struct {
	Kind InfoKind
	// Size is the file size observed with the event, where meaningful.
	Size int64
}

// Sink receives everything a session produces. Calls are strictly
// serialized; a session does not advance its offset until the sink
// call for a record has returned.
type Sink interface {
	OnHeader(fields []string)
	OnRecord(row record.Row)
	OnInfo(info Info)
	OnError(err error)
}

// Fanout returns a Sink that forwards every call to each given sink in
// order. Nil sinks are skipped.
func Fanout(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return fanoutSink(filtered)
}

type fanoutSink []Sink

func (f fanoutSink) OnHeader(fields []string) {
	for _, sink := range f {
		sink.OnHeader(fields)
	}
}

func (f fanoutSink) OnRecord(row record.Row) {
	for _, sink := range f {
		sink.OnRecord(row)
	}
}

func (f fanoutSink) OnInfo(info Info) {
	for _, sink := range f {
		sink.OnInfo(info)
	}
}

func (f fanoutSink) OnError(err error) {
	for _, sink := range f {
		sink.OnError(err)
	}
}
