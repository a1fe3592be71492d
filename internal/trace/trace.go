// Package trace renders decode events as an indented text dump or as JSON
// lines.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"serdump/internal/decode"
)

// Indent is the per-depth prefix of the text dump.
const Indent = "  "

// Line formats one event: indentation, label, and " - value" if present.
func Line(e decode.Event) string {
	var b strings.Builder
	writeLine(&b, e, false)
	return b.String()
}

func writeLine(b *strings.Builder, e decode.Event, offsets bool) {
	if offsets {
		fmt.Fprintf(b, "0x%06x  ", e.Offset)
	}
	for i := 0; i < e.Depth; i++ {
		b.WriteString(Indent)
	}
	b.WriteString(e.Label)
	if e.Value != nil {
		b.WriteString(" - ")
		b.WriteString(*e.Value)
	}
}

// Render returns the text dump of events, one line each.
func Render(events []decode.Event) string {
	var b strings.Builder
	for _, e := range events {
		writeLine(&b, e, false)
		b.WriteByte('\n')
	}
	return b.String()
}

// Writer is a decode.Sink that writes the text dump as events arrive.
type Writer struct {
	w       *bufio.Writer
	offsets bool
	err     error
	line    strings.Builder
}

// NewWriter returns a streaming text sink. With offsets set each line is
// prefixed by the byte offset of the event. Call Flush when decoding ends.
func NewWriter(w io.Writer, offsets bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), offsets: offsets}
}

// Emit writes one line. After the first write error further events are
// dropped; Flush reports the error.
func (tw *Writer) Emit(e decode.Event) {
	if tw.err != nil {
		return
	}
	tw.line.Reset()
	writeLine(&tw.line, e, tw.offsets)
	tw.line.WriteByte('\n')
	_, tw.err = tw.w.WriteString(tw.line.String())
}

// Flush flushes buffered output and returns the first error seen.
func (tw *Writer) Flush() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.w.Flush()
}

// WriteText writes the text dump of events to w.
func WriteText(w io.Writer, events []decode.Event, offsets bool) error {
	tw := NewWriter(w, offsets)
	for _, e := range events {
		tw.Emit(e)
	}
	return tw.Flush()
}

// JSONLWriter is a decode.Sink that writes one JSON object per event.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
	err error
}

// NewJSONLWriter returns a streaming JSON-lines sink. Call Flush when
// decoding ends.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

func (jw *JSONLWriter) Emit(e decode.Event) {
	if jw.err != nil {
		return
	}
	jw.err = jw.enc.Encode(e)
}

// Flush flushes buffered output and returns the first error seen.
func (jw *JSONLWriter) Flush() error {
	if jw.err != nil {
		return jw.err
	}
	return jw.w.Flush()
}

// WriteJSONL writes events to w as JSON lines.
func WriteJSONL(w io.Writer, events []decode.Event) error {
	jw := NewJSONLWriter(w)
	for _, e := range events {
		jw.Emit(e)
	}
	return jw.Flush()
}
