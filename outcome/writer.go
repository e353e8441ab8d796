package outcome

import (
	"fmt"
	"io"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// Writer persists outcome lines the way the CLI surface in spec.md §6
// requires: every line to the log (when configured), with success lines
// suppressed from stderr once a log is configured; failures always go to
// stderr.
type Writer struct {
	log    io.Writer // nil when no log path was configured
	stderr io.Writer
}

// New returns a Writer. log may be nil, meaning no log file is
// configured; in that case every outcome (success and failure) is
// written to stderr.
func New(log, stderr io.Writer) *Writer {
	return &Writer{log: log, stderr: stderr}
}

// Write serializes and persists one outcome, returning whether it was a
// success, for the caller's exit-code bookkeeping.
func (w *Writer) Write(o migrate.Outcome) (success bool, err error) {
	line, err := Marshal(o)
	if err != nil {
		return false, err
	}

	_, isSuccess := o.(migrate.UploadSuccess)

	if w.log != nil {
		if err := writeLine(w.log, line); err != nil {
			return isSuccess, fmt.Errorf("write log: %w", err)
		}
		if !isSuccess {
			if err := writeLine(w.stderr, line); err != nil {
				return isSuccess, fmt.Errorf("write stderr: %w", err)
			}
		}
		return isSuccess, nil
	}

	if err := writeLine(w.stderr, line); err != nil {
		return isSuccess, fmt.Errorf("write stderr: %w", err)
	}
	return isSuccess, nil
}

func writeLine(w io.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
