package outcome

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// StdinSource reads newline-delimited JSON Upload descriptors from an
// io.Reader (typically os.Stdin), the way spec.md §6 describes the CLI's
// default input mode. It implements migrate.Source.
type StdinSource struct {
	scanner *bufio.Scanner
	count   int
	known   bool
}

// NewStdinSource wraps r as a migrate.Source. If count >= 0, Len reports
// it; pass -1 when the number of uploads is not known in advance.
func NewStdinSource(r io.Reader, count int) *StdinSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	return &StdinSource{scanner: scanner, count: count, known: count >= 0}
}

// Next implements migrate.Source.
func (s *StdinSource) Next(ctx context.Context) (migrate.Upload, bool, error) {
	if ctx.Err() != nil {
		return migrate.Upload{}, false, ctx.Err()
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var j uploadJSON
		if err := json.Unmarshal(line, &j); err != nil {
			return migrate.Upload{}, false, fmt.Errorf("decode upload line: %w", err)
		}

		return j.toUpload(), true, nil
	}

	if err := s.scanner.Err(); err != nil {
		return migrate.Upload{}, false, fmt.Errorf("scan upload input: %w", err)
	}

	return migrate.Upload{}, false, nil
}

// Len implements migrate.Source.
func (s *StdinSource) Len() (int, bool) {
	return s.count, s.known
}

// SliceSource adapts an in-memory slice of Uploads into a migrate.Source,
// for feeding Uploads recovered by ExtractUploadsFromFailures back into a
// run (the log-readback round trip, spec.md §8).
type SliceSource struct {
	uploads []migrate.Upload
	pos     int
}

func NewSliceSource(uploads []migrate.Upload) *SliceSource {
	return &SliceSource{uploads: uploads}
}

func (s *SliceSource) Next(ctx context.Context) (migrate.Upload, bool, error) {
	if ctx.Err() != nil {
		return migrate.Upload{}, false, ctx.Err()
	}
	if s.pos >= len(s.uploads) {
		return migrate.Upload{}, false, nil
	}
	u := s.uploads[s.pos]
	s.pos++
	return u, true, nil
}

func (s *SliceSource) Len() (int, bool) {
	return len(s.uploads), true
}
