package tail

// growthSignal classifies a settled notification after re-stating the
// file against the session's consumed position.
type growthSignal int

const (
	// signalNone: no net size change since the last consumed byte.
	// Redundant notifications coalesce to nothing.
	signalNone growthSignal = iota
	// signalGrowth: new bytes exist past the read position.
	signalGrowth
	// signalShrink: the file lost bytes below the read position,
	// meaning truncation or replacement. Bytes already folded into the
	// fragment count as consumed here: a size between the emitted
	// offset and the read position still invalidates the fragment.
	signalShrink
)

// classifyGrowth compares the freshly stated size against the store.
func classifyGrowth(size int64, store *OffsetStore) growthSignal {
	readPos := store.ReadPosition()
	switch {
	case size < readPos:
		return signalShrink
	case size == readPos:
		return signalNone
	default:
		return signalGrowth
	}
}
