package tail

import "bytes"

// SplitRecords reassembles raw chunks into complete newline-terminated
// records. fragment is the partial line carried over from the previous
// read; chunk is the newly read bytes. It returns the complete records
// (terminators stripped) and the new trailing fragment.
//
// Text after the last terminator is always the fragment, never a
// record, even when it looks complete: the next chunk may still arrive
// mid-record. Splitting two chunks across two calls with the carried
// fragment yields exactly the records of splitting their concatenation
// once.
func SplitRecords(fragment, chunk []byte) (records [][]byte, rest []byte) {
	combined := make([]byte, 0, len(fragment)+len(chunk))
	combined = append(combined, fragment...)
	combined = append(combined, chunk...)

	for {
		index := bytes.IndexByte(combined, '\n')
		if index < 0 {
			break
		}
		line := combined[:index]
		// Tolerate CRLF terminators.
		line = bytes.TrimSuffix(line, []byte{'\r'})
		records = append(records, line)
		combined = combined[index+1:]
	}
	if len(combined) == 0 {
		return records, nil
	}
	return records, combined
}
