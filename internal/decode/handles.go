package decode

import "serdump/internal/jstream"

// EntryKind names what a handle was assigned to.
type EntryKind string

const (
	EntryClassDesc EntryKind = "classdesc"
	EntryObject    EntryKind = "object"
	EntryString    EntryKind = "string"
	EntryArray     EntryKind = "array"
	EntryClass     EntryKind = "class"
	EntryEnum      EntryKind = "enum"
)

// Entry is one allocated handle.
type Entry struct {
	Handle Handle    `json:"handle"`
	Kind   EntryKind `json:"kind"`
	Name   string    `json:"name"`
	Offset int       `json:"offset"` // offset of the introducing tag
}

// HandleTable assigns handles in stream order starting at
// jstream.BaseWireHandle. Handles are dense, so an entry's index is its
// handle minus the base.
type HandleTable struct {
	next    Handle
	entries []Entry
}

// NewHandleTable returns an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{next: Handle(jstream.BaseWireHandle)}
}

// Allocate returns the next handle and records what it names.
func (t *HandleTable) Allocate(kind EntryKind, name string, offset int) Handle {
	h := t.next
	t.entries = append(t.entries, Entry{Handle: h, Kind: kind, Name: name, Offset: offset})
	t.next++
	return h
}

// Bind updates the display name of an allocated handle.
func (t *HandleTable) Bind(h Handle, name string) {
	if i, ok := t.index(h); ok {
		t.entries[i].Name = name
	}
}

// Lookup returns the entry for h if it has been allocated.
func (t *HandleTable) Lookup(h Handle) (Entry, bool) {
	i, ok := t.index(h)
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

func (t *HandleTable) index(h Handle) (int, bool) {
	i := int64(h) - int64(jstream.BaseWireHandle)
	if i < 0 || i >= int64(len(t.entries)) {
		return 0, false
	}
	return int(i), true
}

// Next returns the handle the next allocation will use.
func (t *HandleTable) Next() Handle { return t.next }

// Len returns the number of allocated handles.
func (t *HandleTable) Len() int { return len(t.entries) }

// Entries returns a copy of all entries in allocation order.
func (t *HandleTable) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
