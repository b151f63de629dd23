package metrics

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// Registry collects process-local counters for the watch pipeline.
type Registry struct {
	growthEvents      atomic.Int64
	coalescedNotifies atomic.Int64
	recordsEmitted    atomic.Int64
	malformedRecords  atomic.Int64
	shrinkResets      atomic.Int64
	bytesRead         atomic.Int64
	droppedEvents     atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncGrowthEvents() {
	if r == nil {
		return
	}
	r.growthEvents.Add(1)
}

func (r *Registry) IncCoalescedNotifications() {
	if r == nil {
		return
	}
	r.coalescedNotifies.Add(1)
}

func (r *Registry) IncRecordsEmitted() {
	if r == nil {
		return
	}
	r.recordsEmitted.Add(1)
}

func (r *Registry) IncMalformedRecords() {
	if r == nil {
		return
	}
	r.malformedRecords.Add(1)
}

func (r *Registry) IncShrinkResets() {
	if r == nil {
		return
	}
	r.shrinkResets.Add(1)
}

func (r *Registry) AddBytesRead(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.bytesRead.Add(n)
}

func (r *Registry) IncDroppedEvents() {
	if r == nil {
		return
	}
	r.droppedEvents.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	GrowthEvents           int64
	CoalescedNotifications int64
	RecordsEmitted         int64
	MalformedRecords       int64
	ShrinkResets           int64
	BytesRead              int64
	DroppedEvents          int64
}

func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		GrowthEvents:           r.growthEvents.Load(),
		CoalescedNotifications: r.coalescedNotifies.Load(),
		RecordsEmitted:         r.recordsEmitted.Load(),
		MalformedRecords:       r.malformedRecords.Load(),
		ShrinkResets:           r.shrinkResets.Load(),
		BytesRead:              r.bytesRead.Load(),
		DroppedEvents:          r.droppedEvents.Load(),
	}
}

// Fields renders the snapshot as log fields, zero counters omitted.
func (s Snapshot) Fields() map[string]string {
	raw := map[string]int64{
		"growth_events":           s.GrowthEvents,
		"coalesced_notifications": s.CoalescedNotifications,
		"records_emitted":         s.RecordsEmitted,
		"malformed_records":       s.MalformedRecords,
		"shrink_resets":           s.ShrinkResets,
		"bytes_read":              s.BytesRead,
		"dropped_events":          s.DroppedEvents,
	}
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if value != 0 {
			fields[key] = strconv.FormatInt(value, 10)
		}
	}
	return fields
}

func (s Snapshot) String() string {
	fields := s.Fields()
	if len(fields) == 0 {
		return "no activity"
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+fields[key])
	}
	return strings.Join(parts, " ")
}
