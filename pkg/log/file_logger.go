package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileExtension is the conventional extension of trace files.
const FileExtension = ".wlog"

// FileLogger appends trace events to a file in CBOR format.
// It is safe for concurrent use.
//
// The file is synced after errors and after a session ends, so the
// teardown of a device survives a crash that follows it.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder

	mu     sync.Mutex
	closed bool
	failed int
}

// NewFileLogger opens path for appending, creating it with mode 0644.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log writes an event. Events that cannot be written are counted, see
// Failed.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.failed++
		return
	}
	if event.Category == CategoryError || event.Terminal() {
		if err := l.file.Sync(); err != nil {
			l.failed++
		}
	}
}

// Failed returns how many events could not be encoded or synced.
func (l *FileLogger) Failed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// Close closes the file. Later Log calls are ignored; closing twice is a
// no-op.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
