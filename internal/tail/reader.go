package tail

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// ErrShortFile reports that the file shrank below the requested range
// between stat and read. Callers retry by re-stating on the next event.
var ErrShortFile = errors.New("tail: file shorter than requested range")

// RangeReader performs bounded reads of exactly [start, end) from a
// file. It opens and closes the file per call so an external rotation
// or replacement between reads is never masked by a stale handle.
type RangeReader struct {
	FS afero.Fs
}

func (r RangeReader) fs() afero.Fs {
	if r.FS != nil {
		return r.FS
	}
	return afero.NewOsFs()
}

// ReadRange reads the byte range [start, end). It never reads before
// start or past end.
func (r RangeReader) ReadRange(path string, start, end int64) ([]byte, error) {
	if end < start {
		return nil, fmt.Errorf("tail: invalid range [%d, %d)", start, end)
	}
	if end == start {
		return nil, nil
	}

	file, err := r.fs().Open(path)
	if err != nil {
		return nil, fmt.Errorf("tail: open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("tail: seek %s to %d: %w", path, start, err)
	}

	buffer := make([]byte, end-start)
	n, err := io.ReadFull(file, buffer)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, fmt.Errorf("%w: wanted [%d, %d), got %d bytes", ErrShortFile, start, end, n)
	}
	if err != nil {
		return nil, fmt.Errorf("tail: read %s: %w", path, err)
	}
	return buffer, nil
}
