package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultTailLines is how many lines the initial load takes from the end of
// a transcript.
const DefaultTailLines = 200

// tailChunkSize is the backward-scan read size for the tail load.
const tailChunkSize = 64 * 1024

// Reader reads a transcript incrementally. The byte cursor only ever rests
// on a line boundary, so a partially written line is never surfaced and no
// line is returned twice. A file that shrinks below the cursor was
// truncated and replaced; the reader recovers by starting over with a fresh
// tail load.
type Reader struct {
	path       string
	tailLines  int
	offset     int64
	loaded     bool
	parseSkips int
}

// NewReader creates a reader for path. tailLines <= 0 uses
// DefaultTailLines.
func NewReader(path string, tailLines int) *Reader {
	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}
	return &Reader{path: path, tailLines: tailLines}
}

// Path returns the transcript path.
func (r *Reader) Path() string { return r.path }

// Offset returns the current byte cursor.
func (r *Reader) Offset() int64 { return r.offset }

// ParseSkips returns how many malformed lines were skipped so far.
func (r *Reader) ParseSkips() int { return r.parseSkips }

// Read returns new items since the last call. The first call tail-loads
// the final tailLines complete lines; later calls return appended complete
// lines in order.
func (r *Reader) Read() ([]Item, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat transcript: %w", err)
	}
	size := info.Size()

	if size < r.offset {
		// Truncated and rewritten underneath us. Start over.
		r.offset = 0
		r.loaded = false
	}

	if !r.loaded {
		r.loaded = true
		return r.tailLoad(f, size)
	}
	return r.readForward(f, size)
}

// tailLoad positions the cursor so that at most tailLines complete lines
// remain to the end, then parses them. The file is scanned backward in
// chunks; a whole-file read only happens for small files.
func (r *Reader) tailLoad(f *os.File, size int64) ([]Item, error) {
	start, err := tailStart(f, size, r.tailLines)
	if err != nil {
		return nil, err
	}
	r.offset = start
	return r.readForward(f, size)
}

// readForward parses complete lines between the cursor and EOF. Bytes after
// the final newline belong to a line still being written and stay unread.
func (r *Reader) readForward(f *os.File, size int64) ([]Item, error) {
	if size <= r.offset {
		return nil, nil
	}

	buf := make([]byte, size-r.offset)
	if _, err := f.ReadAt(buf, r.offset); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	lastNL := bytes.LastIndexByte(buf, '\n')
	if lastNL < 0 {
		return nil, nil
	}
	complete := buf[:lastNL+1]
	r.offset += int64(lastNL + 1)

	var items []Item
	for _, line := range bytes.Split(complete, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			r.parseSkips++
			continue
		}
		items = append(items, ParseEnvelope(&env)...)
	}
	return items, nil
}

// tailStart finds the byte offset where the last wanted complete lines
// begin: the position just after the (wanted+1)th newline from the end.
func tailStart(f *os.File, size int64, wanted int) (int64, error) {
	if size == 0 || wanted <= 0 {
		return 0, nil
	}

	// Bytes after the final newline are an incomplete line; skip them
	// before counting.
	newlines := 0
	pos := size

	buf := make([]byte, tailChunkSize)
	sawAnyNewline := false

	for pos > 0 {
		chunkStart := pos - tailChunkSize
		if chunkStart < 0 {
			chunkStart = 0
		}
		chunk := buf[:pos-chunkStart]
		if _, err := f.ReadAt(chunk, chunkStart); err != nil && err != io.EOF {
			return 0, fmt.Errorf("tail scan: %w", err)
		}

		for i := len(chunk) - 1; i >= 0; i-- {
			if chunk[i] != '\n' {
				continue
			}
			abs := chunkStart + int64(i)
			if !sawAnyNewline {
				// The final newline terminates the last complete
				// line; count newlines strictly before it.
				sawAnyNewline = true
				continue
			}
			newlines++
			if newlines >= wanted {
				return abs + 1, nil
			}
		}
		pos = chunkStart
	}

	// Fewer complete lines than wanted (or none at all): start at the top
	// so the rest of the file is picked up as it completes.
	return 0, nil
}
