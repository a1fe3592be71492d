package output

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"serdump/internal/decode"
	"serdump/internal/refgraph"
)

func decodeHex(t *testing.T, s string) (*decode.Result, error) {
	t.Helper()
	data, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return decode.Decode(data, decode.Options{})
}

func TestWriteContentJSON(t *testing.T) {
	res, err := decodeHex(t, "aced0005740002414271007e0000")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteContentJSON(&buf, res, nil); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Contents []map[string]any `json:"contents"`
		Handles  []map[string]any `json:"handles"`
		Consumed int              `json:"consumed"`
		Error    map[string]any   `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if len(doc.Contents) != 2 || doc.Contents[0]["type"] != "string" || doc.Contents[1]["type"] != "reference" {
		t.Errorf("contents = %+v", doc.Contents)
	}
	if len(doc.Handles) != 1 || doc.Handles[0]["handle"] != "0x007e0000" {
		t.Errorf("handles = %+v", doc.Handles)
	}
	if doc.Consumed != 14 || doc.Error != nil {
		t.Errorf("consumed = %d, error = %v", doc.Consumed, doc.Error)
	}
}

func TestWriteContentJSONWithError(t *testing.T) {
	res, err := decodeHex(t, "aced000579")
	if err == nil {
		t.Fatal("expected error")
	}
	var buf bytes.Buffer
	if err := WriteContentJSON(&buf, res, err); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kind": "unexpected_tag"`) || !strings.Contains(out, `"offset": 4`) {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, `"contents": []`) {
		t.Errorf("empty contents not written as []:\n%s", out)
	}
}

func TestWriteHandles(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHandles(&buf, []decode.Entry{
		{Handle: 0x7e0000, Kind: decode.EntryClassDesc, Name: "List", Offset: 5},
		{Handle: 0x7e0001, Kind: decode.EntryString, Name: "x", Offset: 40},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "0x007e0000  classdesc  0x000005  List\n" +
		"0x007e0001  string     0x000028  x\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteGraphJSON(t *testing.T) {
	res, err := decodeHex(t, "aced00057372000141000000000000000102000078707371007e0000")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteGraphJSON(&buf, refgraph.Build(res)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"kind": "class"`) {
		t.Errorf("graph JSON:\n%s", buf.String())
	}
}

func TestWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "out.txt")
	err := WriteFile(p, func(w io.Writer) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(p)
	if err != nil || string(got) != "ok" {
		t.Errorf("file = %q, %v", got, err)
	}
}
