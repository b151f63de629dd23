package tail

import (
	"reflect"
	"testing"
)

func TestSplitRecordsBasic(t *testing.T) {
	records, rest := SplitRecords(nil, []byte("id,name\n1,Ann\n"))
	want := [][]byte{[]byte("id,name"), []byte("1,Ann")}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %q, want %q", records, want)
	}
	if rest != nil {
		t.Fatalf("rest = %q, want empty", rest)
	}
}

func TestSplitRecordsHoldsTrailingFragment(t *testing.T) {
	records, rest := SplitRecords(nil, []byte("1,Ann\n2,Bo"))
	if len(records) != 1 || string(records[0]) != "1,Ann" {
		t.Fatalf("records = %q", records)
	}
	if string(rest) != "2,Bo" {
		t.Fatalf("rest = %q, want %q", rest, "2,Bo")
	}
}

func TestSplitRecordsJoinsCarriedFragment(t *testing.T) {
	records, rest := SplitRecords([]byte("2,Bo"), []byte("b\n3,Cy\n"))
	want := [][]byte{[]byte("2,Bob"), []byte("3,Cy")}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %q, want %q", records, want)
	}
	if rest != nil {
		t.Fatalf("rest = %q, want empty", rest)
	}
}

func TestSplitRecordsCRLF(t *testing.T) {
	records, rest := SplitRecords(nil, []byte("1,Ann\r\n2,Bob\r\n"))
	want := [][]byte{[]byte("1,Ann"), []byte("2,Bob")}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %q, want %q", records, want)
	}
	if rest != nil {
		t.Fatalf("rest = %q", rest)
	}
}

func TestSplitRecordsEmptyChunk(t *testing.T) {
	records, rest := SplitRecords([]byte("partial"), nil)
	if len(records) != 0 {
		t.Fatalf("records = %q, want none", records)
	}
	if string(rest) != "partial" {
		t.Fatalf("rest = %q", rest)
	}
}

// Splitting a byte sequence at every possible boundary across two feeds
// must yield the same records as a single feed of the whole sequence.
func TestSplitRecordsNoLossAcrossAnySplitPoint(t *testing.T) {
	input := []byte("id,name\n1,Ann\n2,\"Bo\nb\"\n3,Cy")

	wantRecords, wantRest := SplitRecords(nil, input)

	for cut := 0; cut <= len(input); cut++ {
		firstRecords, fragment := SplitRecords(nil, input[:cut])
		secondRecords, rest := SplitRecords(fragment, input[cut:])

		combined := append(append([][]byte{}, firstRecords...), secondRecords...)
		if !reflect.DeepEqual(combined, wantRecords) {
			t.Fatalf("cut %d: records = %q, want %q", cut, combined, wantRecords)
		}
		if string(rest) != string(wantRest) {
			t.Fatalf("cut %d: rest = %q, want %q", cut, rest, wantRest)
		}
	}
}
