// Package tail implements incremental watching of a delimited tabular
// file: it detects growth of the file, reads only the appended byte
// range, reassembles chunks into complete newline-terminated records,
// and emits each record exactly once, in order, to a Sink.
//
// Truncation or replacement of the file resets the session to offset
// zero and re-resolves the header on the next growth. Removal of the
// file is terminal. Bytes are never re-read or re-parsed: a trailing
// partial line is carried as a fragment until its terminator arrives.
package tail
