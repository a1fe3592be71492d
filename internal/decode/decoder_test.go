package decode

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"serdump/internal/jstream"
)

// stream builds input from space-separated hex groups.
func stream(t *testing.T, groups ...string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(strings.Join(groups, ""), " ", ""))
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return b
}

const (
	header = "aced0005"
	suid1  = "0000000000000001"
)

func mustDecode(t *testing.T, data []byte) *Result {
	t.Helper()
	res, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return res
}

func TestDecodeNullOnly(t *testing.T) {
	res := mustDecode(t, stream(t, header, "70"))
	if len(res.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(res.Contents))
	}
	if _, ok := res.Contents[0].(*Null); !ok {
		t.Errorf("content = %T, want *Null", res.Contents[0])
	}
	if len(res.Handles) != 0 {
		t.Errorf("handles = %d, want 0", len(res.Handles))
	}
	if res.Consumed != 5 {
		t.Errorf("consumed = %d, want 5", res.Consumed)
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	res := mustDecode(t, stream(t, header))
	if len(res.Contents) != 0 {
		t.Errorf("contents = %d, want 0", len(res.Contents))
	}
	labels := []string{"STREAM_MAGIC", "STREAM_VERSION", "Contents"}
	if len(res.Events) != len(labels) {
		t.Fatalf("events = %d, want %d", len(res.Events), len(labels))
	}
	for i, l := range labels {
		if res.Events[i].Label != l {
			t.Errorf("event[%d] = %q, want %q", i, res.Events[i].Label, l)
		}
	}
	if v := *res.Events[0].Value; v != "0xaced" {
		t.Errorf("magic value = %q", v)
	}
}

func TestDecodeString(t *testing.T) {
	res := mustDecode(t, stream(t, header, "74 0002 4142"))
	s, ok := res.Contents[0].(*String)
	if !ok {
		t.Fatalf("content = %T, want *String", res.Contents[0])
	}
	if s.Value != "AB" || s.Handle != 0x7e0000 || s.Long {
		t.Errorf("string = %+v", s)
	}
	if len(res.Handles) != 1 || res.Handles[0].Kind != EntryString || res.Handles[0].Name != "AB" {
		t.Errorf("handles = %+v", res.Handles)
	}

	var sawHandle, sawValue bool
	for _, e := range res.Events {
		if e.Label == "newHandle" && *e.Value == "0x007e0000" {
			sawHandle = true
		}
		if e.Label == "Value" && *e.Value == "AB" {
			sawValue = true
		}
	}
	if !sawHandle || !sawValue {
		t.Errorf("missing newHandle or Value event: %+v", res.Events)
	}
}

func TestDecodeStringReference(t *testing.T) {
	res := mustDecode(t, stream(t, header, "74 0002 4142", "71 007e0000"))
	if len(res.Contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(res.Contents))
	}
	ref, ok := res.Contents[1].(*Reference)
	if !ok {
		t.Fatalf("content = %T, want *Reference", res.Contents[1])
	}
	if ref.Handle != 0x7e0000 || ref.Target != EntryString || ref.Name != "AB" {
		t.Errorf("reference = %+v", ref)
	}
	if len(res.Handles) != 1 {
		t.Errorf("reference allocated a handle: %+v", res.Handles)
	}
}

func TestDecodeLongString(t *testing.T) {
	res := mustDecode(t, stream(t, header, "7c 0000000000000003 3c613e"))
	s := res.Contents[0].(*String)
	if !s.Long || s.Value != "&lt;a&gt;" {
		t.Errorf("string = %+v", s)
	}
	if s.Tag() != jstream.TcLongString {
		t.Errorf("tag = 0x%02x", s.Tag())
	}
}

// The List fixture: an object whose "next" field holds a second object
// sharing the class by reference, then a top-level reference to that
// second object.
const listFixture = "aced0005737200044c69737469c88a154016ae6802000249000576616c75654c00046e6578747400064c4c6973743b7870000000117371007e0000000000137071007e0003"

func TestDecodeLinkedList(t *testing.T) {
	data, _ := hex.DecodeString(listFixture)
	res := mustDecode(t, data)

	wantHandles := []struct {
		kind EntryKind
		name string
	}{
		{EntryClassDesc, "List"},
		{EntryString, "LList;"},
		{EntryObject, "List"},
		{EntryObject, "List"},
	}
	if len(res.Handles) != len(wantHandles) {
		t.Fatalf("handles = %d, want %d", len(res.Handles), len(wantHandles))
	}
	for i, w := range wantHandles {
		e := res.Handles[i]
		if e.Handle != Handle(0x7e0000+i) || e.Kind != w.kind || e.Name != w.name {
			t.Errorf("handle[%d] = %+v, want %s %s", i, e, w.kind, w.name)
		}
	}

	if len(res.Contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(res.Contents))
	}
	obj, ok := res.Contents[0].(*Object)
	if !ok {
		t.Fatalf("content[0] = %T", res.Contents[0])
	}
	if obj.Class.Name() != "List" || obj.Class[0].SerialVersionUID != 0x69c88a154016ae68 {
		t.Errorf("class = %+v", obj.Class[0])
	}
	fields := obj.Class[0].Fields
	if len(fields) != 2 || fields[0].Name != "value" || fields[1].ClassName != "LList;" {
		t.Errorf("fields = %+v", fields)
	}
	vals := obj.Data[0].Values
	if vals[0].Int() != 17 {
		t.Errorf("value = %d, want 17", vals[0].Int())
	}
	next, ok := vals[1].Content.(*Object)
	if !ok {
		t.Fatalf("next = %T", vals[1].Content)
	}
	if next.Handle != 0x7e0003 || next.Data[0].Values[0].Int() != 19 {
		t.Errorf("next = %+v", next)
	}
	if _, ok := next.Data[0].Values[1].Content.(*Null); !ok {
		t.Errorf("next.next = %T, want *Null", next.Data[0].Values[1].Content)
	}

	ref, ok := res.Contents[1].(*Reference)
	if !ok || ref.Handle != 0x7e0003 || ref.Target != EntryObject {
		t.Errorf("content[1] = %+v", res.Contents[1])
	}
	if res.Consumed != len(data) {
		t.Errorf("consumed = %d, want %d", res.Consumed, len(data))
	}
}

func TestDecodeInheritanceOrder(t *testing.T) {
	data := stream(t, header,
		"73",
		// class B { int b }
		"72 0001 42", suid1, "02 0001 49 0001 62 78",
		// extends A { int a }
		"72 0001 41", suid1, "02 0001 49 0001 61 78 70",
		"00000001 00000002",
		// second object of class A, by reference to A's descriptor
		"73 71 007e0001 00000005",
	)
	res := mustDecode(t, data)

	obj := res.Contents[0].(*Object)
	if len(obj.Class) != 2 || obj.Class[0].Name != "B" || obj.Class[1].Name != "A" {
		t.Fatalf("chain = %v", obj.Class)
	}
	if len(obj.Data) != 2 {
		t.Fatalf("classdata = %d, want 2", len(obj.Data))
	}
	if obj.Data[0].Class != "A" || obj.Data[0].Values[0].Int() != 1 {
		t.Errorf("data[0] = %+v", obj.Data[0])
	}
	if obj.Data[1].Class != "B" || obj.Data[1].Values[0].Int() != 2 {
		t.Errorf("data[1] = %+v", obj.Data[1])
	}

	second := res.Contents[1].(*Object)
	if len(second.Class) != 1 || second.Class.Name() != "A" {
		t.Errorf("resolved chain = %v", second.Class)
	}
	if second.Data[0].Values[0].Int() != 5 {
		t.Errorf("a = %d, want 5", second.Data[0].Values[0].Int())
	}
}

func TestDecodePrimitives(t *testing.T) {
	data := stream(t, header,
		"73 72 0001 50", suid1, "02 0008",
		"42 0001 62", // byte b
		"43 0001 63", // char c
		"44 0001 64", // double d
		"46 0001 66", // float f
		"49 0001 69", // int i
		"4a 0001 6a", // long j
		"53 0001 73", // short s
		"5a 0001 7a", // boolean z
		"78 70",
		"41",               // 'A'
		"0041",             // 'A'
		"3ff8000000000000", // 1.5
		"c0200000",         // -2.5
		"ffffffff",         // -1
		"8000000000000000", // min int64
		"7fff",             // 32767
		"01",               // stored 1
	)
	res := mustDecode(t, data)
	v := res.Contents[0].(*Object).Data[0].Values

	if v[0].Byte() != 0x41 || v[0].Text() != "65 (ASCII: A) - 0x41" {
		t.Errorf("byte = %d %q", v[0].Byte(), v[0].Text())
	}
	if v[1].Char() != 'A' || v[1].Text() != "A - 0x0041" {
		t.Errorf("char = %q", v[1].Text())
	}
	if v[2].Double() != 1.5 {
		t.Errorf("double = %v", v[2].Double())
	}
	if v[3].Float() != -2.5 {
		t.Errorf("float = %v", v[3].Float())
	}
	if v[4].Int() != -1 {
		t.Errorf("int = %d", v[4].Int())
	}
	if v[5].Long() != -1<<63 {
		t.Errorf("long = %d", v[5].Long())
	}
	if v[6].Short() != 32767 {
		t.Errorf("short = %d", v[6].Short())
	}
	if v[7].Bool() {
		t.Errorf("boolean stored as 1 decoded true")
	}
	for i, name := range []string{"b", "c", "d", "f", "i", "j", "s", "z"} {
		if v[i].Name != name {
			t.Errorf("value[%d].Name = %q, want %q", i, v[i].Name, name)
		}
	}
}

func TestDecodeBooleanPolarity(t *testing.T) {
	data := stream(t, header, "73 72 0001 41", suid1, "02 0001 5a 0001 62 78 70", "00")
	res := mustDecode(t, data)
	v := res.Contents[0].(*Object).Data[0].Values[0]
	if !v.Bool() {
		t.Errorf("stored 0 decoded false")
	}
	var found bool
	for _, e := range res.Events {
		if e.Label == "boolean" {
			found = true
			if *e.Value != "true" {
				t.Errorf("boolean event = %q, want true", *e.Value)
			}
		}
	}
	if !found {
		t.Error("no boolean event")
	}
}

func TestDecodeIntArray(t *testing.T) {
	data := stream(t, header, "75 72 0002 5b49", suid1, "02 0000 78 70", "00000002 00000001 00000002")
	res := mustDecode(t, data)
	arr := res.Contents[0].(*Array)
	if arr.Handle != 0x7e0001 || arr.Class.Name != "[I" {
		t.Errorf("array = %+v", arr)
	}
	if len(arr.Elements) != 2 || arr.Elements[0].Int() != 1 || arr.Elements[1].Int() != 2 {
		t.Errorf("elements = %+v", arr.Elements)
	}
	if res.Handles[1].Kind != EntryArray || res.Handles[1].Name != "[I" {
		t.Errorf("handles = %+v", res.Handles)
	}
}

func TestDecodeObjectArray(t *testing.T) {
	data := stream(t, header,
		"75 72 0013", hex.EncodeToString([]byte("[Ljava.lang.String;")), suid1, "02 0000 78 70",
		"00000003", "74 0001 78", "70", "71 007e0002",
	)
	res := mustDecode(t, data)
	arr := res.Contents[0].(*Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("elements = %d", len(arr.Elements))
	}
	if s, ok := arr.Elements[0].Content.(*String); !ok || s.Value != "x" {
		t.Errorf("element[0] = %+v", arr.Elements[0].Content)
	}
	if _, ok := arr.Elements[1].Content.(*Null); !ok {
		t.Errorf("element[1] = %T", arr.Elements[1].Content)
	}
	if r, ok := arr.Elements[2].Content.(*Reference); !ok || r.Name != "x" {
		t.Errorf("element[2] = %+v", arr.Elements[2].Content)
	}
}

func TestDecodeEnum(t *testing.T) {
	data := stream(t, header, "7e 72 0001 45", suid1, "12 0000 78 70", "74 0003 524544")
	res := mustDecode(t, data)
	e := res.Contents[0].(*Enum)
	if e.Constant != "RED" || e.Class.Name() != "E" || e.Handle != 0x7e0001 {
		t.Errorf("enum = %+v", e)
	}
	if res.Handles[1].Kind != EntryEnum || res.Handles[1].Name != "E.RED" {
		t.Errorf("enum handle = %+v", res.Handles[1])
	}
	if !e.Class[0].Flags.Enum() {
		t.Errorf("flags = %s", e.Class[0].Flags)
	}
}

func TestDecodeProxyClassDesc(t *testing.T) {
	data := stream(t, header, "7d 00000001 0003 466f6f 78 70")
	res := mustDecode(t, data)
	cd := res.Contents[0].(*ClassDesc)
	if !cd.Proxy || cd.Name != ProxyClassName || cd.Flags != 0 {
		t.Errorf("proxy = %+v", cd)
	}
	if len(cd.Interfaces) != 1 || cd.Interfaces[0] != "Foo" {
		t.Errorf("interfaces = %v", cd.Interfaces)
	}
	if cd.Tag() != jstream.TcProxyClassDesc {
		t.Errorf("tag = 0x%02x", cd.Tag())
	}
}

func TestDecodeClass(t *testing.T) {
	data := stream(t, header, "76 72 0001 41", suid1, "02 0000 78 70")
	res := mustDecode(t, data)
	c := res.Contents[0].(*Class)
	if c.Handle != 0x7e0001 || c.Desc.Name() != "A" {
		t.Errorf("class = %+v", c)
	}
}

func TestDecodeBlockData(t *testing.T) {
	data := stream(t, header, "77 03 010203", "7a 00000002 0a0b")
	res := mustDecode(t, data)
	short := res.Contents[0].(*BlockData)
	long := res.Contents[1].(*BlockData)
	if short.Long || len(short.Data) != 3 {
		t.Errorf("short = %+v", short)
	}
	if !long.Long || len(long.Data) != 2 || long.Data[1] != 0x0b {
		t.Errorf("long = %+v", long)
	}
	if len(res.Handles) != 0 {
		t.Errorf("block data allocated handles")
	}
}

func TestDecodeObjectAnnotation(t *testing.T) {
	data := stream(t, header, "73 72 0001 41", suid1, "03 0000 78 70", "77 01 ff 78")
	res := mustDecode(t, data)
	obj := res.Contents[0].(*Object)
	ann := obj.Data[0].Annotations
	if len(ann) != 1 {
		t.Fatalf("annotations = %d, want 1", len(ann))
	}
	if bd, ok := ann[0].(*BlockData); !ok || bd.Data[0] != 0xff {
		t.Errorf("annotation = %+v", ann[0])
	}
}

func TestDecodeFieldClassNameByReference(t *testing.T) {
	data := stream(t, header, "72 0001 41", suid1, "02 0002",
		"4c 0001 78 74 0003 4c413b",
		"4c 0001 79 71 007e0001",
		"78 70")
	res := mustDecode(t, data)
	f := res.Contents[0].(*ClassDesc).Fields
	if f[0].ClassName != "LA;" || f[1].ClassName != RefSentinel {
		t.Errorf("fields = %+v", f)
	}
}

func TestDecodeNullClassDesc(t *testing.T) {
	res := mustDecode(t, stream(t, header, "73 70"))
	obj := res.Contents[0].(*Object)
	if obj.Class != nil || obj.Data != nil {
		t.Errorf("object = %+v", obj)
	}
	var sawNA bool
	for _, e := range res.Events {
		if e.Label == "N/A" {
			sawNA = true
		}
	}
	if !sawNA {
		t.Error("missing N/A event")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []string
		want   error
		offset int
	}{
		{"bad magic", []string{"acee0005"}, jstream.ErrMalformedHeader, 0},
		{"bad version", []string{"aced0006"}, jstream.ErrMalformedHeader, 2},
		{"short header", []string{"aced"}, jstream.ErrMalformedHeader, 2},
		{"empty", nil, jstream.ErrMalformedHeader, 0},
		{"reset", []string{header, "79"}, jstream.ErrUnexpectedTag, 4},
		{"exception", []string{header, "7b"}, jstream.ErrUnexpectedTag, 4},
		{"stray end block", []string{header, "78"}, jstream.ErrUnexpectedTag, 4},
		{"truncated string", []string{header, "74 0005 41"}, jstream.ErrTruncated, 7},
		{"flags 0x06", []string{header, "72 0001 41", suid1, "06"}, jstream.ErrInvalidClassDescFlags, 16},
		{"flags 0x08", []string{header, "72 0001 41", suid1, "08"}, jstream.ErrInvalidClassDescFlags, 16},
		{"flags 0x05", []string{header, "72 0001 41", suid1, "05"}, jstream.ErrInvalidClassDescFlags, 16},
		{"illegal type code", []string{header, "72 0001 41", suid1, "02 0001 58"}, jstream.ErrIllegalFieldTypeCode, 19},
		{"unknown classdesc ref", []string{header, "73 71 007e0000"}, jstream.ErrUnknownClassDescHandle, 6},
		{"unknown handle", []string{header, "71 007e0005"}, jstream.ErrUnknownHandle, 5},
		{"externalizable", []string{header, "73 72 0001 41", suid1, "04 0000 78 70"}, jstream.ErrUnsupportedExternalizable, 22},
		{"array not bracketed", []string{header, "75 72 0002 4142", suid1, "02 0000 78 70"}, jstream.ErrInvalidArrayClassDesc, 5},
		{"array null desc", []string{header, "75 70"}, jstream.ErrInvalidArrayClassDesc, 5},
		{"array bare bracket", []string{header, "75 72 0001 5b", suid1, "02 0000 78 70"}, jstream.ErrInvalidArrayClassDesc, 5},
		{"array size negative", []string{header, "75 72 0002 5b49", suid1, "02 0000 78 70 ffffffff"}, jstream.ErrInvalidLength, 23},
		{"array size huge", []string{header, "75 72 0002 5b49", suid1, "02 0000 78 70 7fffffff"}, jstream.ErrTruncated, 27},
		{"long string huge", []string{header, "7c 7fffffffffffffff"}, jstream.ErrTruncated, 13},
		{"long string negative", []string{header, "7c ffffffffffffffff"}, jstream.ErrInvalidLength, 5},
		{"long block negative", []string{header, "7a ffffffff"}, jstream.ErrInvalidLength, 5},
		{"proxy count negative", []string{header, "7d 80000000"}, jstream.ErrInvalidLength, 5},
		{"array field tag", []string{header, "73 72 0001 41", suid1, "02 0001 5b 0001 61 74 0002 5b49 78 70", "74 0000"}, jstream.ErrUnexpectedArrayFieldTag, 31},
		{"object field tag", []string{header, "73 72 0001 41", suid1, "02 0001 4c 0001 61 74 0002 4c41 78 70", "77 00"}, jstream.ErrUnexpectedObjectFieldTag, 31},
		{"object field long string", []string{header, "73 72 0001 41", suid1, "02 0001 4c 0001 61 74 0002 4c41 78 70", "7c 0000000000000000"}, jstream.ErrUnexpectedObjectFieldTag, 31},
		{"enum constant not a string", []string{header, "7e 72 0001 45", suid1, "12 0000 78 70 70"}, jstream.ErrUnexpectedTag, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(stream(t, tt.data...), Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var e *jstream.Error
			if !errors.As(err, &e) {
				t.Fatalf("err %T is not *jstream.Error", err)
			}
			if e.Offset != tt.offset {
				t.Errorf("offset = %d, want %d (%v)", e.Offset, tt.offset, err)
			}
			if res == nil {
				t.Error("nil partial result")
			}
		})
	}
}

func TestDecodePartialResult(t *testing.T) {
	res, err := Decode(stream(t, header, "74 0001 41", "79"), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(res.Contents) != 1 || len(res.Handles) != 1 {
		t.Errorf("partial = %d contents, %d handles", len(res.Contents), len(res.Handles))
	}
	if res.Consumed != 8 {
		t.Errorf("consumed = %d, want 8", res.Consumed)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	// A -> B -> null: three levels of nesting counting the top-level content.
	data := stream(t, header,
		"72 0001 41", suid1, "02 0000 78",
		"72 0001 42", suid1, "02 0000 78",
		"70",
	)
	if _, err := Decode(data, Options{MaxDepth: 3}); err != nil {
		t.Fatalf("MaxDepth 3: %v", err)
	}
	_, err := Decode(data, Options{MaxDepth: 2})
	if !errors.Is(err, jstream.ErrDepthExceeded) {
		t.Fatalf("MaxDepth 2: err = %v, want depth exceeded", err)
	}
}

func TestDecodeDeepNestingDefault(t *testing.T) {
	// Thousands of nested superclass descriptors must fail cleanly.
	var groups []string
	groups = append(groups, header)
	for i := 0; i < 5000; i++ {
		groups = append(groups, "72 0001 41", suid1, "02 0000 78")
	}
	groups = append(groups, "70")
	_, err := Decode(stream(t, groups...), Options{})
	if !errors.Is(err, jstream.ErrDepthExceeded) {
		t.Fatalf("err = %v, want depth exceeded", err)
	}
}

func TestDecodeSink(t *testing.T) {
	var n int
	res, err := Decode(stream(t, header, "70"), Options{Sink: SinkFunc(func(Event) { n++ })})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("sink saw %d events, want 4", n)
	}
	if res.Events != nil {
		t.Errorf("events recorded despite sink")
	}
}

func TestDecodeEventDepths(t *testing.T) {
	res := mustDecode(t, stream(t, header, "74 0001 41"))
	want := []struct {
		depth int
		label string
	}{
		{0, "STREAM_MAGIC"},
		{0, "STREAM_VERSION"},
		{0, "Contents"},
		{1, "TC_STRING"},
		{2, "newHandle"},
		{2, "Length"},
		{2, "Value"},
	}
	if len(res.Events) != len(want) {
		t.Fatalf("events = %+v", res.Events)
	}
	for i, w := range want {
		e := res.Events[i]
		if e.Depth != w.depth || e.Label != w.label {
			t.Errorf("event[%d] = %d %q, want %d %q", i, e.Depth, e.Label, w.depth, w.label)
		}
	}
}

func TestDecodeIndependentSessions(t *testing.T) {
	data := stream(t, header, "74 0001 41")
	a := mustDecode(t, data)
	b := mustDecode(t, data)
	if a.Handles[0].Handle != b.Handles[0].Handle {
		t.Errorf("handle state leaked between calls")
	}
	if _, err := Decode(stream(t, header, "71 007e0000"), Options{}); !errors.Is(err, jstream.ErrUnknownHandle) {
		t.Errorf("reference resolved against a previous session: %v", err)
	}
}
