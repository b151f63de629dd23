// Package record parses delimited logical records and carries them as
// header-mapped or positional rows.
package record

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

// MalformedRecordError reports a logical record that failed to parse into
// fields. The raw line is retained so sinks can show what was skipped.
type MalformedRecordError struct {
	Line []byte
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Parse splits one newline-terminated logical record into fields.
// Quoting and escaping follow RFC 4180 via encoding/csv. Records are
// line-bounded here, so a quoted field cannot span lines.
func Parse(line []byte, delimiter rune) ([]string, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	reader := csv.NewReader(bytes.NewReader(line))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	fields, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &MalformedRecordError{Line: append([]byte(nil), line...), Err: err}
	}
	return fields, nil
}

// Row is one parsed record. With a header it maps field names to values;
// without one it is a positional sequence.
type Row struct {
	header []string
	values []string
}

func NewRow(values []string) Row {
	return Row{values: values}
}

func (r Row) WithHeader(header []string) Row {
	return Row{header: header, values: r.values}
}

// Values returns the raw field values in record order.
func (r Row) Values() []string {
	return r.values
}

// Header returns the field names, or nil for a positional row.
func (r Row) Header() []string {
	return r.header
}

// Positional reports whether the row has no resolved header.
func (r Row) Positional() bool {
	return len(r.header) == 0
}

// Get returns the value for a named field. Extra values beyond the
// header, or header fields beyond the values, are simply absent.
func (r Row) Get(field string) (string, bool) {
	for index, name := range r.header {
		if name == field {
			if index < len(r.values) {
				return r.values[index], true
			}
			return "", false
		}
	}
	return "", false
}

// MarshalJSON renders a header-mapped row as an object and a positional
// row as an array, preserving header order for objects.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.Positional() {
		return json.Marshal(r.values)
	}
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, name := range r.header {
		if index > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		value := ""
		if index < len(r.values) {
			value = r.values[index]
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buffer.Write(encoded)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}
