package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionarySetSemantics(t *testing.T) {
	d := NewDictionary()

	require.Equal(t, SetInserted, d.Set("a", Int(1)))
	require.Equal(t, SetUnchanged, d.Set("a", Int(1)))
	require.Equal(t, SetReplaced, d.Set("a", Int(2)))

	v, ok := d.Get("a")
	require.True(t, ok)
	iv, _ := v.Int()
	assert.Equal(t, int32(2), iv)

	require.Equal(t, SetRemoved, d.Set("a", Undefined()))
	_, ok = d.Get("a")
	assert.False(t, ok)

	require.Equal(t, SetUnchanged, d.Set("a", Undefined()))
}

func TestDictionaryPreservesInsertionOrder(t *testing.T) {
	d := NewDictionary()
	d.Set("z", Int(1))
	d.Set("a", Int(2))
	d.Set("m", Int(3))
	d.Set("a", Int(4)) // replace, must not move position

	assert.Equal(t, []string{"z", "a", "m"}, d.Keys())
}

func TestDictionaryCaseInsensitiveFind(t *testing.T) {
	d := NewDictionary()
	d.Set("Type", String("video"))

	assert.Equal(t, -1, d.Find("type", false))
	assert.Equal(t, 0, d.Find("type", true))
}

func TestDictionaryCopyIsDeep(t *testing.T) {
	inner := NewDictionary()
	inner.Set("x", Int(1))

	d := NewDictionary()
	d.Set("nested", FromDict(inner))

	cp := d.Copy()
	cpNested, _ := cp.Get("nested")
	cpDict, _ := cpNested.Dict()
	cpDict.Set("x", Int(99))

	orig, _ := d.Get("nested")
	origDict, _ := orig.Dict()
	origVal, _ := origDict.Get("x")
	iv, _ := origVal.Int()
	assert.Equal(t, int32(1), iv, "mutating the copy must not affect the original")
}

func TestDictionaryEqual(t *testing.T) {
	a := NewDictionary()
	a.Set("a", Int(1))
	a.Set("b", String("hi"))

	b := NewDictionary()
	b.Set("a", Int(1))
	b.Set("b", String("hi"))

	assert.True(t, a.Equal(b))

	c := NewDictionary()
	c.Set("b", String("hi"))
	c.Set("a", Int(1))
	// Equal is order-sensitive per the "iteration order is observable" invariant.
	assert.False(t, a.Equal(c))
}

func TestDictionaryMerge(t *testing.T) {
	a := NewDictionary()
	a.Set("x", Int(1))

	b := NewDictionary()
	b.Set("x", Int(2))
	b.Set("y", Int(3))

	a.Merge(b, MergeFirstWins)
	v, _ := a.Get("x")
	iv, _ := v.Int()
	assert.Equal(t, int32(1), iv, "first-wins keeps receiver's value")

	v, _ = a.Get("y")
	iv, _ = v.Int()
	assert.Equal(t, int32(3), iv)

	a.Merge(b, MergeReplace)
	v, _ = a.Get("x")
	iv, _ = v.Int()
	assert.Equal(t, int32(2), iv, "replace takes src's value")
}

func TestArraySplicePushUnshift(t *testing.T) {
	a := NewArray()
	a.Push(Int(1))
	a.Push(Int(2))
	a.Unshift(Int(0))

	require.Equal(t, 3, a.Len())

	removed := a.Splice(1, 1, []Value{Int(10), Int(11)})
	require.Equal(t, 1, len(removed))
	rv, _ := removed[0].Int()
	assert.Equal(t, int32(1), rv)

	got := make([]int32, a.Len())
	for i := 0; i < a.Len(); i++ {
		v, _ := a.Get(i).Int()
		got[i] = v
	}
	assert.Equal(t, []int32{0, 10, 11, 2}, got)
}

func TestArraySort(t *testing.T) {
	a := NewArray()
	a.Push(Int(3))
	a.Push(Int(1))
	a.Push(Int(2))

	a.Sort(func(items []Value, i, j int, data interface{}) bool {
		vi, _ := items[i].Int()
		vj, _ := items[j].Int()
		return vi < vj
	}, nil)

	for i, want := range []int32{1, 2, 3} {
		v, _ := a.Get(i).Int()
		assert.Equal(t, want, v)
	}
}

func TestSetNoCopyLeavesSourceUndefined(t *testing.T) {
	d := NewDictionary()
	var v Value = Int(5)
	d.SetNoCopy("a", &v)

	assert.True(t, v.IsUndefined(), "SetNoCopy must re-initialise the source to Undefined")

	got, ok := d.Get("a")
	require.True(t, ok)
	iv, _ := got.Int()
	assert.Equal(t, int32(5), iv)
}
