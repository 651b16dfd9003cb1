package value_test

import (
	"testing"

	"github.com/mna/lumen/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newString(chars string) *value.String {
	return &value.String{Chars: chars, Hash: value.HashString(chars)}
}

func TestTableSetGetDelete(t *testing.T) {
	tbl := value.NewTable()
	k1 := newString("foo")
	k2 := newString("bar")

	assert.True(t, tbl.Set(k1, value.Number(1)))
	assert.True(t, tbl.Set(k2, value.Number(2)))
	assert.False(t, tbl.Set(k1, value.Number(3)), "overwrite should report isNew=false")

	v, ok := tbl.Get(k1)
	require.True(t, ok)
	assert.Equal(t, value.Number(3), v)

	assert.Equal(t, 2, tbl.Count())
	assert.True(t, tbl.Delete(k1))
	assert.Equal(t, 1, tbl.Count())

	_, ok = tbl.Get(k1)
	assert.False(t, ok)

	v, ok = tbl.Get(k2)
	require.True(t, ok)
	assert.Equal(t, value.Number(2), v)
}

func TestTableDeleteDoesNotBreakProbeChain(t *testing.T) {
	// Force several grows and probe collisions by inserting many keys, then
	// delete one and confirm every surviving key is still reachable
	// (catches the tombstone-as-empty-slot regression).
	tbl := value.NewTable()
	keys := make([]*value.String, 0, 64)
	for i := 0; i < 64; i++ {
		k := newString(string(rune('a')) + string(rune(i)))
		keys = append(keys, k)
		tbl.Set(k, value.Number(i))
	}

	// delete every third key
	for i := 0; i < len(keys); i += 3 {
		require.True(t, tbl.Delete(keys[i]))
	}

	for i, k := range keys {
		v, ok := tbl.Get(k)
		if i%3 == 0 {
			assert.Falsef(t, ok, "key %d should have been deleted", i)
			continue
		}
		require.Truef(t, ok, "key %d should still be reachable after unrelated deletes", i)
		assert.Equal(t, value.Number(i), v)
	}
}

func TestTableIntern(t *testing.T) {
	tbl := value.NewTable()
	alloc := func(chars string, hash uint32) *value.String {
		return &value.String{Chars: chars, Hash: hash}
	}

	a := tbl.Intern("hello", alloc)
	b := tbl.Intern("hello", alloc)
	c := tbl.Intern("world", alloc)

	assert.Same(t, a, b, "content-equal strings must share one object")
	assert.NotSame(t, a, c)
}

func TestTableDeleteUnmarkedKeys(t *testing.T) {
	tbl := value.NewTable()
	keep := newString("keep")
	drop := newString("drop")
	tbl.Set(keep, value.Bool(true))
	tbl.Set(drop, value.Bool(true))

	tbl.DeleteUnmarkedKeys(func(o value.Obj) bool {
		return o.(*value.String).Chars == "keep"
	})

	_, ok := tbl.Get(keep)
	assert.True(t, ok)
	_, ok = tbl.Get(drop)
	assert.False(t, ok)
}

func TestTableGrowRehashesAllEntries(t *testing.T) {
	tbl := value.NewTable()
	const n = 200
	ss := make([]*value.String, n)
	for i := 0; i < n; i++ {
		s := newString(string(rune('A'+i%26)) + string(rune(i)))
		ss[i] = s
		tbl.Set(s, value.Number(i))
	}
	for i, s := range ss {
		v, ok := tbl.Get(s)
		require.True(t, ok)
		assert.Equal(t, value.Number(i), v)
	}
}
