// Package output writes decode results to files or streams.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"serdump/internal/decode"
	"serdump/internal/jstream"
	"serdump/internal/refgraph"
)

// Document is the JSON form of one decode.
type Document struct {
	Contents []decode.Content `json:"contents"`
	Handles  []decode.Entry   `json:"handles"`
	Consumed int              `json:"consumed"`
	Error    *jstream.Error   `json:"error,omitempty"`
}

// NewDocument pairs a result with its decode error. Only a *jstream.Error
// is recorded; other errors are the caller's to report.
func NewDocument(res *decode.Result, err error) Document {
	doc := Document{Contents: res.Contents, Handles: res.Handles, Consumed: res.Consumed}
	if doc.Contents == nil {
		doc.Contents = []decode.Content{}
	}
	if doc.Handles == nil {
		doc.Handles = []decode.Entry{}
	}
	var e *jstream.Error
	if errors.As(err, &e) {
		doc.Error = e
	}
	return doc
}

// WriteContentJSON writes the content tree, handle table and any error.
func WriteContentJSON(w io.Writer, res *decode.Result, err error) error {
	return writeJSON(w, NewDocument(res, err))
}

// WriteGraphJSON writes the reference graph.
func WriteGraphJSON(w io.Writer, g *refgraph.Graph) error {
	return writeJSON(w, g)
}

// WriteHandles writes the handle table as aligned text.
func WriteHandles(w io.Writer, handles []decode.Entry) error {
	for _, e := range handles {
		if _, err := fmt.Fprintf(w, "%s  %-9s  0x%06x  %s\n", e.Handle, e.Kind, e.Offset, e.Name); err != nil {
			return fmt.Errorf("output: write handles: %w", err)
		}
	}
	return nil
}

// WriteFile creates path (and its directory) and hands it to write.
// path "-" or "" writes to stdout.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode: %w", err)
	}
	return nil
}
