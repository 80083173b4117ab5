package value

// Array is an ordered sequence of Values.
type Array struct {
	items []Value
}

// NewArray returns an empty Array.
func NewArray() *Array { return &Array{} }

// Len reports the number of items.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Get returns the i'th item. The caller must ensure i is in range;
// use GetNC for a non-crashing variant.
func (a *Array) Get(i int) Value { return a.items[i] }

// GetNC ("no-crash") returns the i'th item, or Undefined if i is out
// of range, matching the spec's get_nc accessor.
func (a *Array) GetNC(i int) Value {
	if i < 0 || i >= len(a.items) {
		return Undefined()
	}
	return a.items[i]
}

// Push appends v to the end.
func (a *Array) Push(v Value) {
	a.items = append(a.items, v)
}

// Unshift prepends v to the front.
func (a *Array) Unshift(v Value) {
	a.items = append([]Value{v}, a.items...)
}

// Splice removes del items starting at idx and inserts src in their
// place, returning the removed items.
func (a *Array) Splice(idx, del int, src []Value) []Value {
	if idx < 0 {
		idx = 0
	}
	if idx > len(a.items) {
		idx = len(a.items)
	}
	end := idx + del
	if end > len(a.items) {
		end = len(a.items)
	}

	removed := make([]Value, end-idx)
	copy(removed, a.items[idx:end])

	tail := make([]Value, len(a.items)-end)
	copy(tail, a.items[end:])

	out := make([]Value, 0, idx+len(src)+len(tail))
	out = append(out, a.items[:idx]...)
	out = append(out, src...)
	out = append(out, tail...)
	a.items = out

	return removed
}

// LessFunc compares items i and j, with opaque caller data threaded
// through, matching the spec's sort-with-opaque-data contract.
type LessFunc func(items []Value, i, j int, data interface{}) bool

// Sort sorts the array in place using less and opaque data.
func (a *Array) Sort(less LessFunc, data interface{}) {
	// Insertion sort: arrays here are metadata-sized (stream lists,
	// track children), not bulk data, so O(n^2) is adequate and keeps
	// the comparator's index semantics (which reference the live
	// slice, per the spec's "opaque data" contract) simple to reason
	// about under swaps.
	for i := 1; i < len(a.items); i++ {
		for j := i; j > 0 && less(a.items, j, j-1, data); j-- {
			a.items[j], a.items[j-1] = a.items[j-1], a.items[j]
		}
	}
}

// Copy returns a deep copy.
func (a *Array) Copy() *Array {
	if a == nil {
		return nil
	}
	cp := &Array{items: make([]Value, len(a.items))}
	for i, v := range a.items {
		cp.items[i] = v.Copy()
	}
	return cp
}

// ForEach calls fn for every item in order, stopping early if fn
// returns false.
func (a *Array) ForEach(fn func(i int, v Value) bool) {
	if a == nil {
		return
	}
	for i, v := range a.items {
		if !fn(i, v) {
			return
		}
	}
}

// Equal reports whether a and b hold structurally equal items in the
// same order.
func (a *Array) Equal(b *Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.items {
		if !Equal(a.items[i], b.items[i]) {
			return false
		}
	}
	return true
}
