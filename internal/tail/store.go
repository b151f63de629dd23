package tail

// OffsetStore tracks how far a session has consumed one watched file.
// Every byte below Offset has been folded into an emitted complete
// record; Fragment holds the bytes read beyond Offset that are still
// waiting for their record terminator. Pure state, no I/O.
type OffsetStore struct {
	offset   int64
	header   []string
	fragment []byte
}

// Offset is the byte position up to which complete records have been
// emitted. It never moves past a held-back partial line.
func (s *OffsetStore) Offset() int64 {
	return s.offset
}

// ReadPosition is the byte position up to which the file has been read,
// including the pending fragment. Reads resume here.
func (s *OffsetStore) ReadPosition() int64 {
	return s.offset + int64(len(s.fragment))
}

// AdvanceTo moves the offset forward. Backward moves are ignored; only
// Reset rewinds.
func (s *OffsetStore) AdvanceTo(offset int64) {
	if offset > s.offset {
		s.offset = offset
	}
}

func (s *OffsetStore) Fragment() []byte {
	return s.fragment
}

func (s *OffsetStore) SetFragment(fragment []byte) {
	s.fragment = fragment
}

func (s *OffsetStore) Header() []string {
	return s.header
}

func (s *OffsetStore) SetHeader(fields []string) {
	s.header = fields
}

// Reset clears all state back to a fresh session at offset zero, used
// when the file shrinks or is replaced.
func (s *OffsetStore) Reset() {
	s.offset = 0
	s.header = nil
	s.fragment = nil
}
