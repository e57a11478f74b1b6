// Package ndjson writes and reads newline-delimited JSON event streams.
package ndjson

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pageza/vinoteca/backend/internal/types"
	"go.uber.org/zap"
)

// ContentType is sent with every streamed response.
const ContentType = "application/x-ndjson"

const maxLineSize = 1 << 20

// Writer encodes one event per line and flushes after each one so the client sees it
// immediately.
type Writer struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	flusher, _ := w.(http.Flusher)
	return &Writer{enc: enc, flusher: flusher}
}

// Write sends ev followed by a newline.
func (w *Writer) Write(ev types.StreamEvent) error {
	if err := w.enc.Encode(ev); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Reader decodes an event stream line by line. Blank lines are skipped and lines that
// are not a known event are logged and dropped.
type Reader struct {
	scanner *bufio.Scanner
	log     *zap.Logger
}

func NewReader(r io.Reader, log *zap.Logger) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner, log: log}
}

// Next returns the next event, or io.EOF at the end of the stream.
func (r *Reader) Next() (types.StreamEvent, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		var ev types.StreamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			r.log.Warn("skipping malformed stream line", zap.String("line", line), zap.Error(err))
			continue
		}
		return ev, nil
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return types.StreamEvent{}, fmt.Errorf("stream line exceeds %d bytes: %w", maxLineSize, err)
		}
		return types.StreamEvent{}, fmt.Errorf("failed to read stream: %w", err)
	}
	return types.StreamEvent{}, io.EOF
}
