package value

import "strings"

// entry is one (key, Value) pair inside a Dictionary.
type entry struct {
	key string
	val Value
}

// Dictionary is an ordered sequence of (key, Value) entries. Keys are
// non-empty UTF-8 strings, unique under the dictionary's match mode.
// Insertion order is preserved through iteration, copy and binary
// serialization.
type Dictionary struct {
	entries    []entry
	ignoreCase bool
}

// NewDictionary returns an empty, case-sensitive Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// NewDictionaryIgnoreCase returns an empty Dictionary whose default
// Find/Get/Set match mode ignores key case.
func NewDictionaryIgnoreCase() *Dictionary {
	return &Dictionary{ignoreCase: true}
}

// Len reports the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func keyEqual(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Find returns the index of key, or -1 if absent. ignoreCase
// overrides the dictionary's default match mode for this call.
func (d *Dictionary) Find(key string, ignoreCase bool) int {
	if d == nil {
		return -1
	}
	for i, e := range d.entries {
		if keyEqual(e.key, key, ignoreCase) {
			return i
		}
	}
	return -1
}

// findDefault uses the dictionary's configured match mode.
func (d *Dictionary) findDefault(key string) int {
	return d.Find(key, d.ignoreCase)
}

// Get returns the value at key and whether it was present. Absent is
// not an error: it is a normal, expected outcome per spec §7.
func (d *Dictionary) Get(key string) (Value, bool) {
	i := d.findDefault(key)
	if i < 0 {
		return Undefined(), false
	}
	return d.entries[i].val, true
}

// GetAt returns the key and value of the i'th entry in insertion order.
func (d *Dictionary) GetAt(i int) (string, Value) {
	e := d.entries[i]
	return e.key, e.val
}

// SetResult describes the outcome of Set.
type SetResult uint8

// Outcomes of Set.
const (
	SetReplaced SetResult = iota
	SetInserted
	SetRemoved
	SetUnchanged
)

// Set installs value at key, per the semantics in spec §4.1:
//   - Undefined value removes the entry (no-op if already absent).
//   - An existing entry with an equal value is a no-op ("unchanged").
//   - Otherwise the entry is replaced in place (preserving position)
//     or appended if new.
func (d *Dictionary) Set(key string, val Value) SetResult {
	i := d.findDefault(key)

	if val.IsUndefined() {
		if i < 0 {
			return SetUnchanged
		}
		d.entries = append(d.entries[:i], d.entries[i+1:]...)
		return SetRemoved
	}

	if i < 0 {
		d.entries = append(d.entries, entry{key: key, val: val})
		return SetInserted
	}

	if Equal(d.entries[i].val, val) {
		return SetUnchanged
	}
	d.entries[i].val = val
	return SetReplaced
}

// SetNoCopy is equivalent to Set, but documents (per spec §4.1's
// set_*_nocopy family) that the caller is transferring ownership of a
// held Value; it never copies nested dictionaries/arrays. Use this
// when val was just built and will not be reused by the caller.
func (d *Dictionary) SetNoCopy(key string, val *Value) SetResult {
	r := d.Set(key, *val)
	*val = Undefined()
	return r
}

// Delete removes key, returning true if it was present.
func (d *Dictionary) Delete(key string) bool {
	return d.Set(key, Undefined()) == SetRemoved
}

// DeleteFields removes every key in keys, returning the count removed.
func (d *Dictionary) DeleteFields(keys []string) int {
	n := 0
	for _, k := range keys {
		if d.Delete(k) {
			n++
		}
	}
	return n
}

// ForEach calls fn for every entry in insertion order. Iteration
// stops early if fn returns false.
func (d *Dictionary) ForEach(fn func(key string, val Value) bool) {
	if d == nil {
		return
	}
	for _, e := range d.entries {
		if !fn(e.key, e.val) {
			return
		}
	}
}

// Keys returns the dictionary's keys in insertion order.
func (d *Dictionary) Keys() []string {
	out := make([]string, 0, d.Len())
	d.ForEach(func(k string, _ Value) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Copy returns a deep copy: nested dictionaries/arrays are themselves
// copied, never shared.
func (d *Dictionary) Copy() *Dictionary {
	if d == nil {
		return nil
	}
	cp := &Dictionary{
		entries:    make([]entry, len(d.entries)),
		ignoreCase: d.ignoreCase,
	}
	for i, e := range d.entries {
		cp.entries[i] = entry{key: e.key, val: e.val.Copy()}
	}
	return cp
}

// Clone is an alias for Copy, matching the teacher/spec naming of
// both a "deep copy" and a "clone" operation over the same semantics.
func (d *Dictionary) Clone() *Dictionary { return d.Copy() }

// Reset empties the dictionary in place.
func (d *Dictionary) Reset() {
	d.entries = nil
}

// MergeMode selects the conflict-resolution rule for Merge.
type MergeMode uint8

// Merge modes.
const (
	// MergeFirstWins keeps the receiver's value when both dictionaries
	// define the same key.
	MergeFirstWins MergeMode = iota
	// MergeReplace overwrites the receiver's value with src's.
	MergeReplace
)

// Merge copies every entry of src into d according to mode. Values
// are deep-copied; src is left untouched.
func (d *Dictionary) Merge(src *Dictionary, mode MergeMode) {
	src.ForEach(func(k string, v Value) bool {
		if mode == MergeFirstWins && d.Find(k, d.ignoreCase) >= 0 {
			return true
		}
		d.Set(k, v.Copy())
		return true
	})
}

// Equal reports whether a and b have the same entries in the same
// order with structurally equal values.
func (a *Dictionary) Equal(b *Dictionary) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.entries {
		if a.entries[i].key != b.entries[i].key {
			return false
		}
		if !Equal(a.entries[i].val, b.entries[i].val) {
			return false
		}
	}
	return true
}

// Dump renders the dictionary as an indented, human-readable tree,
// mirroring the teacher's Dump-style debug helpers.
func (d *Dictionary) Dump(indent int) string {
	var sb strings.Builder
	dumpDict(&sb, d, indent)
	return sb.String()
}

func dumpDict(sb *strings.Builder, d *Dictionary, indent int) {
	pad := strings.Repeat("  ", indent)
	d.ForEach(func(k string, v Value) bool {
		sb.WriteString(pad)
		sb.WriteString(k)
		sb.WriteString(": ")
		dumpValue(sb, v, indent)
		return true
	})
}

func dumpValue(sb *strings.Builder, v Value, indent int) {
	switch v.Type() {
	case TypeDictionary:
		sb.WriteString("{\n")
		d, _ := v.Dict()
		dumpDict(sb, d, indent+1)
		sb.WriteString(strings.Repeat("  ", indent))
		sb.WriteString("}\n")
	case TypeArray:
		sb.WriteString("[\n")
		arr, _ := v.Arr()
		for i := 0; i < arr.Len(); i++ {
			sb.WriteString(strings.Repeat("  ", indent+1))
			dumpValue(sb, arr.Get(i), indent+1)
		}
		sb.WriteString(strings.Repeat("  ", indent))
		sb.WriteString("]\n")
	default:
		sb.WriteString(v.Type().String())
		sb.WriteString("\n")
	}
}
