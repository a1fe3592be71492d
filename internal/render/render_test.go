package render

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"serdump/internal/decode"
	"serdump/internal/refgraph"
)

const listStream = "aced0005737200044c69737469c88a154016ae6802000249000576616c75654c00046e6578747400064c4c6973743b7870000000117371007e0000000000137071007e0003"

func decodeList(t *testing.T) *decode.Result {
	t.Helper()
	data, _ := hex.DecodeString(listStream)
	res, err := decode.Decode(data, decode.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestDotID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "n_abc"},
		{"0x007e0000", "n_0x007e0000"},
		{"a.b", "n_a_002eb"},
	}
	for _, tt := range tests {
		if got := dotID(tt.in); got != tt.want {
			t.Errorf("dotID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncLabel(t *testing.T) {
	if got := truncLabel("abcdefgh", 6); got != "abc..." {
		t.Errorf("truncLabel = %q", got)
	}
	if got := truncLabel("abc", 6); got != "abc" {
		t.Errorf("truncLabel = %q", got)
	}
}

func TestGraphDOT(t *testing.T) {
	g := refgraph.Build(decodeList(t))
	dot := GraphDOT(g, "List <demo>", NASA, 0)
	for _, want := range []string{
		"digraph refgraph {",
		"n_0x007e0002 -> n_0x007e0000",
		"n_0x007e0002 -> n_0x007e0003",
		"List.next",
		"List &lt;demo&gt;",
		NASA.DescFill,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT not terminated")
	}
}

func TestGraphDOTMaxNodes(t *testing.T) {
	g := refgraph.Build(decodeList(t))
	dot := GraphDOT(g, "", NASA, 2)
	if strings.Contains(dot, "->") {
		t.Errorf("edges to unrendered nodes:\n%s", dot)
	}
}

func TestEdgeColor(t *testing.T) {
	if NASA.EdgeColor(refgraph.EdgeSuper) != NASA.EdgeSuper {
		t.Error("super color")
	}
	if NASA.EdgeColor("unknown") != NASA.EdgeField {
		t.Error("fallback color")
	}
}

func TestWriteReportHTML(t *testing.T) {
	res := decodeList(t)
	var buf bytes.Buffer
	WriteReportHTML(&buf, Report{Title: "list", Source: "list.ser", Size: 64, Result: res}, NASA)
	html := buf.String()
	for _, want := range []string{
		"<title>list</title>",
		"<h2>Handles</h2>",
		"0x007e0003",
		"LList;",
		"STREAM_MAGIC - 0xaced",
		"</body></html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(html, "Decode Error") {
		t.Error("error section without error")
	}
}

func TestWriteReportHTMLError(t *testing.T) {
	data, _ := hex.DecodeString("aced000579")
	res, err := decode.Decode(data, decode.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var buf bytes.Buffer
	WriteReportHTML(&buf, Report{Title: "bad", Size: len(data), Result: res, Err: err}, NASA)
	if !strings.Contains(buf.String(), "unexpected_tag</b> at offset <span class=\"mono\">0x4</span>") {
		t.Errorf("error section:\n%s", buf.String())
	}
}
