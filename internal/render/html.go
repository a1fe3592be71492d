package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"serdump/internal/decode"
	"serdump/internal/jstream"
	"serdump/internal/refgraph"
	"serdump/internal/trace"
)

// Report is what WriteReportHTML summarizes.
type Report struct {
	Title  string
	Source string // input path or "-"
	Size   int    // input bytes
	Result *decode.Result
	Err    error // decode error, if the parse stopped early
}

// maxTraceLines caps the trace section; huge payloads make unusable pages.
const maxTraceLines = 5000

// WriteReportHTML writes a single-page HTML summary of one decode: totals,
// the failure if any, handle kinds, the handle table and the trace.
func WriteReportHTML(w io.Writer, r Report, t Theme) {
	res := r.Result
	if res == nil {
		res = &decode.Result{}
	}

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 14px; color: %s; background: %s; margin: 2em; max-width: 1100px; }
h1 { font-size: 18px; font-weight: 600; margin-bottom: 0.5em; }
h2 { font-size: 14px; font-weight: 600; margin-top: 1.5em; border-bottom: 1px solid #ddd; padding-bottom: 4px; }
table { border-collapse: collapse; margin: 0.5em 0; }
th, td { text-align: left; padding: 3px 12px 3px 0; font-size: 13px; }
th { font-weight: 600; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.mono { font-family: "Courier New", monospace; font-size: 12px; }
.bar { height: 8px; border-radius: 2px; display: inline-block; vertical-align: middle; }
.err { color: %s; }
pre { font-family: "Courier New", monospace; font-size: 12px; background: white; padding: 1em; overflow-x: auto; }
</style>
</head>
<body>
`, htmlEscape(r.Title), t.TextColor, t.Background, t.ErrorText)

	fmt.Fprintf(w, "<h1>%s</h1>\n", htmlEscape(r.Title))

	g := refgraph.Build(res)

	fmt.Fprintln(w, "<h2>Summary</h2>")
	fmt.Fprintln(w, "<table>")
	if r.Source != "" {
		fmt.Fprintf(w, "<tr><td>Source</td><td class=\"mono\">%s</td></tr>\n", htmlEscape(r.Source))
	}
	fmt.Fprintf(w, "<tr><td>Input bytes</td><td class=\"num\">%d</td></tr>\n", r.Size)
	fmt.Fprintf(w, "<tr><td>Bytes decoded</td><td class=\"num\">%d</td></tr>\n", res.Consumed)
	fmt.Fprintf(w, "<tr><td>Top-level contents</td><td class=\"num\">%d</td></tr>\n", len(res.Contents))
	fmt.Fprintf(w, "<tr><td>Handles</td><td class=\"num\">%d</td></tr>\n", len(res.Handles))
	fmt.Fprintf(w, "<tr><td>References</td><td class=\"num\">%d</td></tr>\n", len(g.Edges))
	fmt.Fprintf(w, "<tr><td>Trace events</td><td class=\"num\">%d</td></tr>\n", len(res.Events))
	fmt.Fprintln(w, "</table>")

	if r.Err != nil {
		fmt.Fprintln(w, "<h2>Decode Error</h2>")
		var je *jstream.Error
		if errors.As(r.Err, &je) {
			fmt.Fprintf(w, "<p class=\"err\"><b>%s</b> at offset <span class=\"mono\">0x%x</span>: %s</p>\n",
				htmlEscape(string(je.Kind)), je.Offset, htmlEscape(je.Msg))
		} else {
			fmt.Fprintf(w, "<p class=\"err\">%s</p>\n", htmlEscape(r.Err.Error()))
		}
	}

	// Handle kinds.
	kindOrder := []decode.EntryKind{
		decode.EntryClassDesc, decode.EntryObject, decode.EntryString,
		decode.EntryArray, decode.EntryEnum, decode.EntryClass,
	}
	counts := make(map[decode.EntryKind]int)
	for _, e := range res.Handles {
		counts[e.Kind]++
	}
	if len(res.Handles) > 0 {
		fmt.Fprintln(w, "<h2>Handle Kinds</h2>")
		fmt.Fprintln(w, "<table>")
		fmt.Fprintln(w, "<tr><th>Kind</th><th>Count</th><th></th></tr>")
		for _, k := range kindOrder {
			count := counts[k]
			if count == 0 {
				continue
			}
			barW := count * 200 / len(res.Handles)
			if barW < 2 {
				barW = 2
			}
			fmt.Fprintf(w, "<tr><td>%s</td><td class=\"num\">%d</td><td><span class=\"bar\" style=\"width:%dpx;background:%s\"></span></td></tr>\n",
				k, count, barW, t.EdgeClass)
		}
		fmt.Fprintln(w, "</table>")

		fmt.Fprintln(w, "<h2>Handles</h2>")
		fmt.Fprintln(w, "<table>")
		fmt.Fprintln(w, "<tr><th>Handle</th><th>Kind</th><th>Name</th><th>Offset</th><th>Refs out</th></tr>")
		for _, e := range res.Handles {
			fmt.Fprintf(w, "<tr><td class=\"mono\">%s</td><td>%s</td><td class=\"mono\">%s</td><td class=\"num mono\">0x%x</td><td class=\"num\">%d</td></tr>\n",
				e.Handle, e.Kind, htmlEscape(truncLabel(e.Name, 120)), e.Offset, len(g.Out(e.Handle)))
		}
		fmt.Fprintln(w, "</table>")
	}

	if len(res.Events) > 0 {
		fmt.Fprintln(w, "<h2>Trace</h2>")
		fmt.Fprint(w, "<pre>")
		events := res.Events
		if len(events) > maxTraceLines {
			events = events[:maxTraceLines]
		}
		var b strings.Builder
		for _, e := range events {
			b.WriteString(trace.Line(e))
			b.WriteByte('\n')
		}
		fmt.Fprint(w, htmlEscape(b.String()))
		if len(res.Events) > maxTraceLines {
			fmt.Fprintf(w, "... and %d more events\n", len(res.Events)-maxTraceLines)
		}
		fmt.Fprintln(w, "</pre>")
	}

	fmt.Fprintln(w, "</body></html>")
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
