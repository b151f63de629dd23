package record

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseBasicRecord(t *testing.T) {
	fields, err := Parse([]byte("1,Ann,admin"), ',')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"1", "Ann", "admin"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
}

func TestParseQuotedFields(t *testing.T) {
	fields, err := Parse([]byte(`1,"Ann, the first","said ""hi"""`), ',')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"1", "Ann, the first", `said "hi"`}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
}

func TestParseAlternateDelimiter(t *testing.T) {
	fields, err := Parse([]byte("a\tb\tc"), '\t')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"a", "b", "c"}) {
		t.Fatalf("fields = %v", fields)
	}
}

func TestParseMalformedRecord(t *testing.T) {
	_, err := Parse([]byte(`1,"unterminated`), ',')
	if err == nil {
		t.Fatal("expected error for unterminated quote")
	}
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("error type %T, want *MalformedRecordError", err)
	}
	if string(malformed.Line) != `1,"unterminated` {
		t.Fatalf("raw line = %q", malformed.Line)
	}
}

func TestParseEmptyLine(t *testing.T) {
	fields, err := Parse(nil, ',')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fields != nil {
		t.Fatalf("fields = %v, want nil", fields)
	}
}

func TestRowHeaderAccess(t *testing.T) {
	row := NewRow([]string{"1", "Ann"}).WithHeader([]string{"id", "name"})
	if row.Positional() {
		t.Fatal("row with header should not be positional")
	}
	value, ok := row.Get("name")
	if !ok || value != "Ann" {
		t.Fatalf("Get(name) = %q, %v", value, ok)
	}
	if _, ok := row.Get("missing"); ok {
		t.Fatal("missing field should not resolve")
	}
}

func TestRowHeaderLongerThanValues(t *testing.T) {
	row := NewRow([]string{"1"}).WithHeader([]string{"id", "name"})
	if _, ok := row.Get("name"); ok {
		t.Fatal("field beyond values should be absent")
	}
}

func TestRowJSON(t *testing.T) {
	mapped := NewRow([]string{"1", "Ann"}).WithHeader([]string{"id", "name"})
	data, err := mapped.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"id":"1","name":"Ann"}` {
		t.Fatalf("json = %s", data)
	}

	positional := NewRow([]string{"1", "Ann"})
	data, err = positional.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["1","Ann"]` {
		t.Fatalf("json = %s", data)
	}
}
