// internal/output/formatter.go
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
)

// Sink receives one block per provider, in invocation order.
type Sink interface {
	Emit(provider, payload string) error
}

// PrettyJSON re-indents payload with two spaces, keeping key order. The
// second result is false when payload is not valid JSON.
func PrettyJSON(payload string) (string, bool) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return payload, false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return payload, false
	}
	return buf.String(), true
}

// FormatBlock renders "{provider}:\n{payload}\n". Payloads that are not
// JSON are written as-is.
func FormatBlock(provider, payload string) string {
	pretty, _ := PrettyJSON(payload)
	return provider + ":\n" + strings.TrimRight(pretty, "\r\n") + "\n"
}

// WriterSink writes formatted blocks to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes to w, normally os.Stdout.
func NewConsoleSink(w io.Writer) *WriterSink {
	if w == nil {
		w = os.Stdout
	}
	return &WriterSink{w: w}
}

func (s *WriterSink) Emit(provider, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, FormatBlock(provider, payload)); err != nil {
		return core.NewQueryError(core.Io, provider, "", err)
	}
	return nil
}

// FileSink writes blocks to a file that is truncated once when opened and
// appended to for the rest of the run.
type FileSink struct {
	WriterSink
	path string
	f    *os.File
}

// NewFileSink creates or truncates path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		logger.GetLogger().Errorf("Failed to open output file %s: %v", path, err)
		return nil, core.NewQueryError(core.Io, "", "", fmt.Errorf("open %s: %w", path, err))
	}
	return &FileSink{WriterSink: WriterSink{w: f}, path: path, f: f}, nil
}

func (s *FileSink) Emit(provider, payload string) error {
	if err := s.WriterSink.Emit(provider, payload); err != nil {
		logger.GetLogger().Errorf("Failed to write %s results to %s: %v", provider, s.path, err)
		return err
	}
	return nil
}

// Path returns the output file path.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Close() error {
	return s.f.Close()
}
