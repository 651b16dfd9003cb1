package value

// Table is an open-addressed hash map from interned String keys to Values,
// using linear probing and tombstones. It backs instance fields, class
// method tables, and the VM's string-interning table (see Intern).
//
// Key equality is reference equality: valid because keys are always
// interned Strings, except inside Intern itself, which is the only probe
// that compares content.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

type entry struct {
	key   *String // nil for an empty slot or a tombstone (disambiguated by live)
	value Value
	live  bool // true once the slot has ever held a key (tombstone or occupied)
}

const maxLoad = 0.75

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Count returns the number of live entries (tombstones are not counted).
func (t *Table) Count() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

// Get returns the value for key, and whether it was found.
func (t *Table) Get(key *String) (Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set inserts or updates key's value. It returns true if this created a new
// entry (as opposed to overwriting an existing one).
func (t *Table) Set(key *String, val Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}

	e := t.find(key)
	isNew := e.key == nil
	if isNew && !e.live {
		// not reusing a tombstone: count grows by one
		t.count++
	}
	e.key = key
	e.value = val
	e.live = true
	return isNew
}

// Delete removes key, replacing its slot with a tombstone so that later
// probes for other keys that collided with it keep working.
func (t *Table) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = nil
	e.live = true // tombstone: distinguishes "once occupied" from truly empty for probing
	return true
}

// Keys returns the table's live keys, for GC root-walking and for iterating
// fields/methods. Order is unspecified.
func (t *Table) Keys() []*String {
	keys := make([]*String, 0, t.count)
	for i := range t.entries {
		if t.entries[i].key != nil {
			keys = append(keys, t.entries[i].key)
		}
	}
	return keys
}

// Entries calls fn for every live key/value pair.
func (t *Table) Entries(fn func(key *String, val Value)) {
	for i := range t.entries {
		if t.entries[i].key != nil {
			fn(t.entries[i].key, t.entries[i].value)
		}
	}
}

// DeleteUnmarkedKeys removes every entry whose key is not marked. It
// implements the GC sweep's "strings table keys are weak" rule (§4.6): call
// this before sweeping the heap so the String objects it drops can then be
// freed in the same pass.
func (t *Table) DeleteUnmarkedKeys(marked func(Obj) bool) {
	for i := range t.entries {
		key := t.entries[i].key
		if key != nil && !marked(key) {
			t.entries[i].key = nil
			t.entries[i].value = nil
			t.entries[i].live = true // tombstone, preserves the probe chain for survivors
		}
	}
}

// find locates the entry key belongs in (an existing entry, an empty slot,
// or the first tombstone seen along the probe sequence), using reference
// equality.
func (t *Table) find(key *String) *entry {
	if len(t.entries) == 0 {
		return &entry{}
	}
	idx := key.Hash % uint32(len(t.entries))
	var tombstoneSlot *entry
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil && !e.live:
			// truly empty: prefer an earlier tombstone, if any
			if tombstoneSlot != nil {
				return tombstoneSlot
			}
			return e
		case e.key == nil && e.live:
			// tombstone
			if tombstoneSlot == nil {
				tombstoneSlot = e
			}
		case e.key == key:
			return e
		}
		idx = (idx + 1) % uint32(len(t.entries))
	}
}

// findContent is the one probe in the table that compares string content
// instead of reference, used exclusively by Intern to decide whether a
// fresh string literal already has an interned representative.
func (t *Table) findContent(hash uint32, chars string) *String {
	if len(t.entries) == 0 {
		return nil
	}
	idx := hash % uint32(len(t.entries))
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil && !e.live:
			return nil
		case e.key != nil && e.key.Hash == hash && e.key.Chars == chars:
			return e.key
		}
		idx = (idx + 1) % uint32(len(t.entries))
	}
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for _, e := range old {
		if e.key == nil {
			continue
		}
		dst := t.find(e.key)
		dst.key = e.key
		dst.value = e.value
		dst.live = true
		t.count++
	}
}

// Intern finds-or-creates the single canonical *String for chars. It is
// the table used by the VM to guarantee content-equal strings share a
// reference (invariant: two equal strings have the same object identity).
func (t *Table) Intern(chars string, alloc func(chars string, hash uint32) *String) *String {
	hash := HashString(chars)
	if s := t.findContent(hash, chars); s != nil {
		return s
	}
	s := alloc(chars, hash)
	t.Set(s, Bool(true)) // value is unused; presence in the table is what matters
	return s
}
