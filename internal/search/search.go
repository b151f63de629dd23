// Package search implements the one-shot substring scan over all
// records of a delimited file.
package search

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"tailsv/internal/record"
)

// Result holds the header row and every matching record of a scan.
type Result struct {
	Header  []string
	Matches []record.Row
	// Scanned counts the data records examined, header excluded.
	Scanned int
}

// Options configures a scan.
type Options struct {
	Delimiter rune
	// FS defaults to the OS filesystem.
	FS afero.Fs
	// NoHeader treats the first line as data instead of field names.
	NoHeader bool
}

// Search linearly scans the whole file and returns every record with
// query as a substring of any field. Matching is case-sensitive. The
// header row is carried in the result for rendering but never matched.
func Search(path, query string, options Options) (Result, error) {
	filesystem := options.FS
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}

	file, err := filesystem.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("search: open %s: %w", path, err)
	}
	defer file.Close()

	var result Result
	headerPending := !options.NoHeader

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields, err := record.Parse(scanner.Bytes(), options.Delimiter)
		if err != nil {
			return result, err
		}
		if fields == nil {
			continue
		}
		if headerPending {
			result.Header = fields
			headerPending = false
			continue
		}
		result.Scanned++
		if matches(fields, query) {
			row := record.NewRow(fields)
			if result.Header != nil {
				row = row.WithHeader(result.Header)
			}
			result.Matches = append(result.Matches, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("search: read %s: %w", path, err)
	}
	return result, nil
}

func matches(fields []string, query string) bool {
	for _, field := range fields {
		if strings.Contains(field, query) {
			return true
		}
	}
	return false
}
